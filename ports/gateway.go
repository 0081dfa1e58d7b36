package ports

import (
	"context"

	"github.com/gebeta-eats/payflow/core"
)

// InitiateRequest is the provider-facing payload for opening a hosted
// checkout session.
type InitiateRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	TxRef       string `json:"tx_ref"`
	OrderID     string `json:"orderId"`
	ReturnURL   string `json:"return_url"`
	CallbackURL string `json:"callback_url"`
}

// InitiateResponse carries the checkout URL the browser must be sent to.
type InitiateResponse struct {
	CheckoutURL string
}

// VerifyResponse is the backend's answer for one verification attempt.
// RetryAfter, when positive, is the provider-suggested delay in milliseconds
// before the next attempt.
type VerifyResponse struct {
	Success    bool
	Status     core.PaymentStatus
	Order      *core.OrderSnapshot
	RetryAfter int
	Message    string
}

// PaymentGateway is the backend that talks to the payment provider. It is
// consumed as two abstract operations: initiate and verify.
type PaymentGateway interface {
	Initiate(ctx context.Context, token string, req InitiateRequest) (InitiateResponse, error)

	// VerifyByOrder checks payment status by order id.
	VerifyByOrder(ctx context.Context, token, orderID string) (VerifyResponse, error)

	// VerifyByRef checks payment status by transaction reference; preferred
	// when the return URL carries a tx_ref.
	VerifyByRef(ctx context.Context, token, txRef string) (VerifyResponse, error)
}
