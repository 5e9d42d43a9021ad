package order

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested order could not be located.
var ErrNotFound = errors.New("order not found")

// ErrInvalidTransition is returned for status changes the lifecycle forbids.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// CanTransition reports whether the lifecycle permits moving to the target
// status. Paid and cancelled are terminal.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && (to == StatusPaid || to == StatusCancelled)
}

// CustomerInfo is the checkout contact and destination block.
type CustomerInfo struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Company        string `json:"company,omitempty"`
	Address        string `json:"address" validate:"required"`
	City           string `json:"city" validate:"required"`
	State          string `json:"state,omitempty"`
	Country        string `json:"country" validate:"required"`
	PostalCode     string `json:"postalCode,omitempty"`
	ShippingMethod string `json:"shippingMethod,omitempty"`
	PaymentMethod  string `json:"paymentMethod,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// PaymentInfo captures how an order was (or will be) paid.
type PaymentInfo struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	PayerID       string `json:"payerId,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
}

// Item is an immutable snapshot of a priced cart line at checkout time.
// Monetary values are rounded to two decimal places.
type Item struct {
	ProductName    string            `json:"productName"`
	CategoryFolder string            `json:"categoryFolder"`
	ProductSlug    string            `json:"productSlug"`
	Quantity       int               `json:"quantity"`
	Specifications map[string]string `json:"specifications,omitempty"`
	UnitPrice      float64           `json:"unitPrice"`
	DiscountRate   float64           `json:"discountRate"`
	FinalUnitPrice float64           `json:"finalUnitPrice"`
	LineTotal      float64           `json:"lineTotal"`
	UnitWeightKg   float64           `json:"unitWeightKg"`
	LineWeightKg   float64           `json:"lineWeightKg"`
}

// Order is the durable checkout snapshot.
type Order struct {
	ID            string       `json:"id"`
	CreatedAt     time.Time    `json:"createdAt"`
	Status        Status       `json:"status"`
	Customer      CustomerInfo `json:"customer"`
	Items         []Item       `json:"items"`
	Subtotal      float64      `json:"subtotal"`
	ShippingCost  float64      `json:"shippingCost"`
	Total         float64      `json:"total"`
	TotalWeightKg float64      `json:"totalWeightKg"`
	Payment       PaymentInfo  `json:"payment"`
}

// Repository persists order snapshots.
type Repository interface {
	Append(ctx context.Context, o Order) error
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id string) (Order, error)
	Update(ctx context.Context, o Order) error
}
