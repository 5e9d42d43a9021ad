package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// AuthorizeRequest captures the information required to open a payment with a
// provider that uses a redirect-and-approve flow.
type AuthorizeRequest struct {
	OrderRef    string
	Amount      decimal.Decimal
	Currency    string
	Description string
	ReturnURL   string
	CancelURL   string
}

// Authorization is the provider's handle for a payment awaiting buyer
// approval.
type Authorization struct {
	PaymentID   string
	ApprovalURL string
}

// Capture is the settled outcome of an approved payment.
type Capture struct {
	TransactionID string
	PayerID       string
	State         string
}

// Provider abstracts the operations required from an upstream payment
// provider.
type Provider interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (Authorization, error)
	Execute(ctx context.Context, paymentID, payerID string) (Capture, error)
}
