package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qualclamps/storefront/internal/cart"
	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/lock"
	"github.com/qualclamps/storefront/internal/order"
	"github.com/qualclamps/storefront/internal/payment"
	"github.com/qualclamps/storefront/internal/shipping"
)

// ErrEmptyCart is returned when checkout is attempted on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrInvalidInput is returned when the checkout payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Payment methods accepted at checkout.
const (
	MethodCOD         = "cod"
	MethodPayPal      = "paypal"
	MethodUPI         = "upi"
	MethodBankContact = "email"
)

// Service runs the checkout flow: aggregate the cart, snapshot it into an
// order, collect payment, and only then clear the cart.
type Service struct {
	Cart     *cart.Service
	Orders   order.Repository
	Payments payment.Provider
	Pending  PendingStore
	Bus      *events.Bus
	Validate *validator.Validate
	Locks    *lock.Locker

	Currency  string
	ReturnURL string
	CancelURL string

	Now        func() time.Time
	NewOrderID func(time.Time) string
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) orderID(at time.Time) string {
	if s != nil && s.NewOrderID != nil {
		return s.NewOrderID(at)
	}
	return fmt.Sprintf("ORD-%d-%s", at.Unix(), uuid.NewString()[:8])
}

// Result is the outcome of PlaceOrder. RedirectURL is set only for payment
// methods that need buyer approval on the provider's site; the order is not
// yet persisted in that case.
type Result struct {
	Order       order.Order `json:"order"`
	RedirectURL string      `json:"redirectUrl,omitempty"`
}

// PlaceOrder validates the customer info, snapshots the cart, and either
// persists the order immediately (offline payment methods stay pending) or
// stages it behind a provider approval redirect.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, info order.CustomerInfo) (Result, error) {
	if s == nil || s.Cart == nil || s.Orders == nil {
		return Result{}, errors.New("checkout service not configured")
	}
	if s.Locks != nil {
		var res Result
		err := s.Locks.WithLock(ctx, lock.CheckoutKey(sessionID), 30*time.Second, func(ctx context.Context) error {
			var err error
			res, err = s.placeOrder(ctx, sessionID, info)
			return err
		})
		return res, err
	}
	return s.placeOrder(ctx, sessionID, info)
}

// placeOrder runs the checkout flow; double submits are serialised per
// session by the caller when a locker is configured.
func (s *Service) placeOrder(ctx context.Context, sessionID string, info order.CustomerInfo) (Result, error) {
	if s.Validate != nil {
		if err := s.Validate.Struct(info); err != nil {
			return Result{}, fmt.Errorf("%s: %w", validationMessage(err), ErrInvalidInput)
		}
	}
	if !shipping.Allowed(info.Country) {
		return Result{}, fmt.Errorf("we do not ship to %s: %w", strings.TrimSpace(info.Country), ErrInvalidInput)
	}

	details, totals, err := s.Cart.Details(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if len(details) == 0 {
		return Result{}, ErrEmptyCart
	}

	method := strings.ToLower(strings.TrimSpace(info.ShippingMethod))
	if method == "" {
		method = shipping.MethodAir
		info.ShippingMethod = method
	}
	shipCost, err := shipping.Cost(info.Country, totals.TotalWeightKg, totals.TotalQuantity, method)
	if err != nil {
		return Result{}, fmt.Errorf("we do not ship to %s: %w", strings.TrimSpace(info.Country), ErrInvalidInput)
	}

	now := s.now()
	subtotal := decimal.NewFromFloat(totals.ProductsTotal)
	total := subtotal.Add(shipCost)

	ord := order.Order{
		ID:            s.orderID(now),
		CreatedAt:     now.UTC(),
		Status:        order.StatusPending,
		Customer:      info,
		Items:         snapshotItems(details),
		Subtotal:      subtotal.Round(2).InexactFloat64(),
		ShippingCost:  shipCost.Round(2).InexactFloat64(),
		Total:         total.Round(2).InexactFloat64(),
		TotalWeightKg: totals.TotalWeightKg,
	}

	payMethod := strings.ToLower(strings.TrimSpace(info.PaymentMethod))
	if payMethod == "" {
		payMethod = MethodCOD
	}

	if payMethod == MethodPayPal {
		return s.stagePayPal(ctx, sessionID, ord, total)
	}

	ord.Payment = order.PaymentInfo{
		Method:       payMethod,
		Status:       "pending",
		Instructions: paymentInstructions(payMethod),
	}
	if err := s.Orders.Append(ctx, ord); err != nil {
		return Result{}, fmt.Errorf("persist order: %w", err)
	}

	// The snapshot is durable; failures past this point must not undo it.
	_ = s.Bus.Emit(ctx, events.TopicOrderCreated, ord)
	if err := s.Cart.Clear(ctx, sessionID); err != nil {
		_ = err // the stored order wins; a stale cart is harmless
	}
	return Result{Order: ord}, nil
}

func (s *Service) stagePayPal(ctx context.Context, sessionID string, ord order.Order, total decimal.Decimal) (Result, error) {
	if s.Payments == nil || s.Pending == nil {
		return Result{}, errors.New("paypal payments not configured")
	}
	auth, err := s.Payments.Authorize(ctx, payment.AuthorizeRequest{
		OrderRef:    ord.ID,
		Amount:      total.Round(2),
		Currency:    s.Currency,
		Description: fmt.Sprintf("Order %s", ord.ID),
		ReturnURL:   s.ReturnURL,
		CancelURL:   s.CancelURL,
	})
	if err != nil {
		return Result{}, fmt.Errorf("authorize payment: %w", err)
	}
	ord.Payment = order.PaymentInfo{Method: MethodPayPal, Status: "awaiting_approval"}
	po := PendingOrder{SessionID: sessionID, PaymentID: auth.PaymentID, Order: ord}
	if err := s.Pending.Put(ctx, po); err != nil {
		return Result{}, err
	}
	return Result{Order: ord, RedirectURL: auth.ApprovalURL}, nil
}

// ConfirmPayPal executes an approved payment and persists the staged order.
// The payment id must match a staged order or the confirmation is rejected.
func (s *Service) ConfirmPayPal(ctx context.Context, sessionID, paymentID, payerID string) (order.Order, error) {
	if s == nil || s.Pending == nil || s.Payments == nil || s.Orders == nil {
		return order.Order{}, errors.New("checkout service not configured")
	}
	if strings.TrimSpace(paymentID) == "" {
		return order.Order{}, fmt.Errorf("payment id is required: %w", ErrInvalidInput)
	}
	po, err := s.Pending.Get(ctx, paymentID)
	if err != nil {
		return order.Order{}, err
	}
	if po.PaymentID != paymentID || (po.SessionID != "" && po.SessionID != sessionID) {
		return order.Order{}, ErrNoPendingOrder
	}

	capture, err := s.Payments.Execute(ctx, paymentID, payerID)
	if err != nil {
		// Keep the staged order; the buyer may retry approval.
		return order.Order{}, fmt.Errorf("execute payment: %w", err)
	}

	ord := po.Order
	ord.Status = order.StatusPaid
	ord.Payment = order.PaymentInfo{
		Method:        MethodPayPal,
		Status:        "paid",
		TransactionID: capture.TransactionID,
		PayerID:       capture.PayerID,
	}
	if err := s.Orders.Append(ctx, ord); err != nil {
		return order.Order{}, fmt.Errorf("persist order: %w", err)
	}
	_ = s.Pending.Delete(ctx, paymentID)
	_ = s.Bus.Emit(ctx, events.TopicOrderPaid, ord)
	if err := s.Cart.Clear(ctx, po.SessionID); err != nil {
		_ = err
	}
	return ord, nil
}

// CancelPayPal drops the staged order for an abandoned approval. The cart is
// left untouched.
func (s *Service) CancelPayPal(ctx context.Context, paymentID string) error {
	if s == nil || s.Pending == nil {
		return errors.New("checkout service not configured")
	}
	if strings.TrimSpace(paymentID) == "" {
		return fmt.Errorf("payment id is required: %w", ErrInvalidInput)
	}
	return s.Pending.Delete(ctx, paymentID)
}

func snapshotItems(details []cart.LineDetail) []order.Item {
	items := make([]order.Item, 0, len(details))
	for _, d := range details {
		items = append(items, order.Item{
			ProductName:    d.ProductName,
			CategoryFolder: d.CategoryFolder,
			ProductSlug:    d.ProductSlug,
			Quantity:       d.Quantity,
			Specifications: d.Specifications,
			UnitPrice:      d.UnitPrice,
			DiscountRate:   d.DiscountRate,
			FinalUnitPrice: d.FinalUnitPrice,
			LineTotal:      d.LineTotal,
			UnitWeightKg:   d.UnitWeightKg,
			LineWeightKg:   d.LineWeightKg,
		})
	}
	return items
}

func paymentInstructions(method string) string {
	switch method {
	case MethodCOD:
		return "Pay in cash when your order is delivered."
	case MethodUPI:
		return "Complete the transfer to our UPI id; your order ships once the payment clears."
	case MethodBankContact:
		return "Our sales team will e-mail you bank transfer details shortly."
	default:
		return ""
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, ve := range verrs {
			fields = append(fields, ve.Field())
		}
		return "missing or invalid fields: " + strings.Join(fields, ", ")
	}
	return "invalid checkout payload"
}
