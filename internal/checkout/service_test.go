package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/cart"
	"github.com/qualclamps/storefront/internal/catalog"
	"github.com/qualclamps/storefront/internal/checkout"
	"github.com/qualclamps/storefront/internal/events"
	"github.com/qualclamps/storefront/internal/lock"
	"github.com/qualclamps/storefront/internal/order"
	"github.com/qualclamps/storefront/internal/payment"
	"github.com/qualclamps/storefront/internal/storage/jsonstore"
)

type fakeProvider struct {
	authErr    error
	execErr    error
	authorized []payment.AuthorizeRequest
	executed   []string
}

func (f *fakeProvider) Authorize(_ context.Context, req payment.AuthorizeRequest) (payment.Authorization, error) {
	if f.authErr != nil {
		return payment.Authorization{}, f.authErr
	}
	f.authorized = append(f.authorized, req)
	return payment.Authorization{PaymentID: "PAY-1", ApprovalURL: "https://paypal.test/approve"}, nil
}

func (f *fakeProvider) Execute(_ context.Context, paymentID, payerID string) (payment.Capture, error) {
	if f.execErr != nil {
		return payment.Capture{}, f.execErr
	}
	f.executed = append(f.executed, paymentID)
	return payment.Capture{TransactionID: "SALE-1", PayerID: payerID, State: "approved"}, nil
}

type fixture struct {
	svc      *checkout.Service
	cartSvc  *cart.Service
	store    *jsonstore.Store
	provider *fakeProvider
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := jsonstore.New(t.TempDir())
	require.NoError(t, err)

	cartSvc := &cart.Service{
		Store:    &cart.RedisStore{Client: client, TTL: time.Hour},
		Products: store.Products(),
	}
	provider := &fakeProvider{}
	svc := &checkout.Service{
		Cart:     cartSvc,
		Orders:   store.Orders(),
		Payments: provider,
		Pending:  &checkout.RedisPendingStore{Client: client, TTL: time.Hour},
		Bus:      &events.Bus{},
		Validate: validator.New(),
		Locks:    &lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond},
		Currency: "USD",
		Now:      func() time.Time { return time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC) },
		NewOrderID: func(at time.Time) string {
			return "ORD-TEST-1"
		},
	}
	return fixture{svc: svc, cartSvc: cartSvc, store: store, provider: provider}
}

func customer() order.CustomerInfo {
	return order.CustomerInfo{
		Name: "Asha Rao", Email: "asha@example.com", Phone: "+91-90000-00000",
		Address: "14 Ring Rd", City: "Pune", Country: "India",
		PaymentMethod: checkout.MethodCOD,
	}
}

func (f fixture) fillCart(t *testing.T, qty int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.Products().Save(ctx, "hose-clamps", catalog.Product{
		Name: "Heavy Duty Clamp", Slug: "heavy-duty-clamp", Price: 12, Weight: 1,
	}))
	_, err := f.cartSvc.Add(ctx, "sid", "hose-clamps", "heavy-duty-clamp", qty, nil, nil)
	require.NoError(t, err)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "sid", customer())
	require.ErrorIs(t, err, checkout.ErrEmptyCart)
}

func TestPlaceOrderValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fillCart(t, 1)

	info := customer()
	info.Email = "not-an-email"
	_, err := f.svc.PlaceOrder(context.Background(), "sid", info)
	require.ErrorIs(t, err, checkout.ErrInvalidInput)

	info = customer()
	info.Phone = ""
	_, err = f.svc.PlaceOrder(context.Background(), "sid", info)
	require.ErrorIs(t, err, checkout.ErrInvalidInput)
}

func TestPlaceOrderRefusesEmbargoedCountry(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.fillCart(t, 1)

	info := customer()
	info.Country = "pakistan"
	_, err := f.svc.PlaceOrder(context.Background(), "sid", info)
	require.ErrorIs(t, err, checkout.ErrInvalidInput)
}

func TestPlaceOrderCODPersistsThenClearsCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 600)

	res, err := f.svc.PlaceOrder(ctx, "sid", customer())
	require.NoError(t, err)
	require.Empty(t, res.RedirectURL)

	// 600 units at 12.00 with the 25% tier; domestic shipping 600 kg x 5.80
	// takes the 29% air tier: 3480.00 x 0.71 = 2470.80.
	require.Equal(t, "ORD-TEST-1", res.Order.ID)
	require.Equal(t, order.StatusPending, res.Order.Status)
	require.InDelta(t, 5400.00, res.Order.Subtotal, 1e-9)
	require.InDelta(t, 2470.80, res.Order.ShippingCost, 1e-9)
	require.InDelta(t, 7870.80, res.Order.Total, 1e-9)
	require.Len(t, res.Order.Items, 1)
	require.NotEmpty(t, res.Order.Payment.Instructions)

	stored, err := f.store.Orders().Get(ctx, "ORD-TEST-1")
	require.NoError(t, err)
	require.Equal(t, order.StatusPending, stored.Status)

	lines, err := f.cartSvc.Store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestPlaceOrderPersistFailureKeepsCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 2)
	f.svc.Orders = failingOrders{}

	_, err := f.svc.PlaceOrder(ctx, "sid", customer())
	require.Error(t, err)

	lines, err := f.cartSvc.Store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

type failingOrders struct{}

func (failingOrders) Append(context.Context, order.Order) error  { return errors.New("disk full") }
func (failingOrders) List(context.Context) ([]order.Order, error) { return nil, nil }
func (failingOrders) Get(context.Context, string) (order.Order, error) {
	return order.Order{}, order.ErrNotFound
}
func (failingOrders) Update(context.Context, order.Order) error { return errors.New("disk full") }

func TestPayPalFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 10)

	info := customer()
	info.PaymentMethod = checkout.MethodPayPal
	res, err := f.svc.PlaceOrder(ctx, "sid", info)
	require.NoError(t, err)
	require.Equal(t, "https://paypal.test/approve", res.RedirectURL)

	// Nothing persisted and the cart is intact while approval is pending.
	_, err = f.store.Orders().Get(ctx, "ORD-TEST-1")
	require.ErrorIs(t, err, order.ErrNotFound)
	lines, err := f.cartSvc.Store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	ord, err := f.svc.ConfirmPayPal(ctx, "sid", "PAY-1", "PAYER-7")
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, ord.Status)
	require.Equal(t, "SALE-1", ord.Payment.TransactionID)

	stored, err := f.store.Orders().Get(ctx, ord.ID)
	require.NoError(t, err)
	require.Equal(t, order.StatusPaid, stored.Status)

	lines, err = f.cartSvc.Store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Empty(t, lines)

	// The staged order is consumed.
	_, err = f.svc.ConfirmPayPal(ctx, "sid", "PAY-1", "PAYER-7")
	require.ErrorIs(t, err, checkout.ErrNoPendingOrder)
}

func TestConfirmPayPalRejectsMismatchedPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 1)

	info := customer()
	info.PaymentMethod = checkout.MethodPayPal
	_, err := f.svc.PlaceOrder(ctx, "sid", info)
	require.NoError(t, err)

	_, err = f.svc.ConfirmPayPal(ctx, "sid", "PAY-WRONG", "PAYER-7")
	require.ErrorIs(t, err, checkout.ErrNoPendingOrder)

	// A different session cannot claim the staged order either.
	_, err = f.svc.ConfirmPayPal(ctx, "other-session", "PAY-1", "PAYER-7")
	require.ErrorIs(t, err, checkout.ErrNoPendingOrder)
}

func TestConfirmPayPalExecuteFailureKeepsStagedOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 1)

	info := customer()
	info.PaymentMethod = checkout.MethodPayPal
	_, err := f.svc.PlaceOrder(ctx, "sid", info)
	require.NoError(t, err)

	f.provider.execErr = errors.New("provider timeout")
	_, err = f.svc.ConfirmPayPal(ctx, "sid", "PAY-1", "PAYER-7")
	require.Error(t, err)

	// Retry succeeds once the provider recovers.
	f.provider.execErr = nil
	_, err = f.svc.ConfirmPayPal(ctx, "sid", "PAY-1", "PAYER-7")
	require.NoError(t, err)
}

func TestCancelPayPalClearsStagedOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	f.fillCart(t, 1)

	info := customer()
	info.PaymentMethod = checkout.MethodPayPal
	_, err := f.svc.PlaceOrder(ctx, "sid", info)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelPayPal(ctx, "PAY-1"))
	_, err = f.svc.ConfirmPayPal(ctx, "sid", "PAY-1", "PAYER-7")
	require.ErrorIs(t, err, checkout.ErrNoPendingOrder)

	// The cart survives a cancelled approval.
	lines, err := f.cartSvc.Store.Get(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}
