package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

const defaultCurrency = "ETB"

// InitiatorConfig carries the URLs and currency the initiator bakes into the
// provider payload.
type InitiatorConfig struct {
	// AppBaseURL is the origin the provider sends the user back to.
	AppBaseURL string
	// APIBaseURL is the backend origin for the server-to-server callback.
	APIBaseURL string
	Currency   string
}

// InitiateParams identifies the order and the payer.
type InitiateParams struct {
	OrderID    string
	Amount     string
	PayerEmail string
	PayerName  string
}

// Initiation is the outcome of a successful handoff, returned just before
// the navigate-away effect fires.
type Initiation struct {
	Session     core.PaymentSession
	CheckoutURL string
}

// PaymentInitiator builds the provider-facing request, snapshots the
// credential for the post-redirect restoration, and performs the navigation
// handoff to the hosted checkout page.
type PaymentInitiator struct {
	vault    *TokenVault
	sessions *PaymentSessionStore
	gateway  ports.PaymentGateway
	nav      ports.Navigator
	config   InitiatorConfig
	log      zerolog.Logger
}

// NewPaymentInitiator creates a new initiator
func NewPaymentInitiator(
	vault *TokenVault,
	sessions *PaymentSessionStore,
	gateway ports.PaymentGateway,
	nav ports.Navigator,
	config InitiatorConfig,
	log zerolog.Logger,
) *PaymentInitiator {
	if config.Currency == "" {
		config.Currency = defaultCurrency
	}
	return &PaymentInitiator{
		vault:    vault,
		sessions: sessions,
		gateway:  gateway,
		nav:      nav,
		config:   config,
		log:      log.With().Str("component", "payment_initiator").Logger(),
	}
}

// Initiate runs the outbound half of the flow: credential check, session
// bookkeeping, pre-payment snapshot, the initiate call and the redirect.
// Once the redirect fires no further flow code runs for this attempt.
func (i *PaymentInitiator) Initiate(ctx context.Context, params InitiateParams) (Initiation, error) {
	amount, err := normalizeAmount(params.Amount)
	if err != nil {
		return Initiation{}, err
	}

	status := i.vault.AuthStatus(ctx)
	if !status.Authenticated {
		return Initiation{}, core.ErrAuthenticationRequired
	}

	session, err := i.sessions.Begin(ctx, params.OrderID, amount)
	if err != nil {
		return Initiation{}, fmt.Errorf("failed to begin payment session: %w", err)
	}

	if err := i.vault.StoreSnapshot(ctx, status.Token); err != nil {
		i.log.Warn().Err(err).Msg("failed to snapshot credential before redirect")
	}
	i.sessions.RememberReturnPath(ctx, "/checkout")

	firstName, lastName := splitPayerName(params.PayerName)
	req := ports.InitiateRequest{
		Amount:      amount,
		Currency:    i.config.Currency,
		Email:       strings.ToLower(strings.TrimSpace(params.PayerEmail)),
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       session.TxRef,
		OrderID:     session.OrderID,
		ReturnURL:   fmt.Sprintf("%s/payment/callback/%s?restoreAuth=true&tx_ref=%s", i.config.AppBaseURL, session.OrderID, session.TxRef),
		CallbackURL: fmt.Sprintf("%s/payment/callback/%s", i.config.APIBaseURL, session.OrderID),
	}

	resp, err := i.gateway.Initiate(ctx, status.Token, req)
	if err != nil {
		i.sessions.CacheError(ctx, err.Error())
		return Initiation{}, err
	}

	if resp.CheckoutURL == "" {
		i.sessions.CacheError(ctx, "provider response missing checkout URL")
		return Initiation{}, fmt.Errorf("%w: missing checkout URL", core.ErrInvalidProviderResponse)
	}

	i.log.Info().
		Str("order_id", session.OrderID).
		Str("tx_ref", session.TxRef).
		Str("amount", amount).
		Msg("redirecting to hosted checkout")

	if err := i.nav.Redirect(resp.CheckoutURL); err != nil {
		return Initiation{}, fmt.Errorf("failed to perform checkout redirect: %w", err)
	}

	return Initiation{Session: session, CheckoutURL: resp.CheckoutURL}, nil
}

// normalizeAmount validates the amount and formats it to two decimals.
func normalizeAmount(raw string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidAmount, raw)
	}
	if !d.IsPositive() {
		return "", fmt.Errorf("%w: amount must be greater than zero", core.ErrInvalidAmount)
	}
	return d.StringFixed(2), nil
}

// splitPayerName splits a full name into the first/last pair the provider
// expects, with placeholder fallbacks and 50-character truncation.
func splitPayerName(full string) (string, string) {
	parts := strings.Fields(strings.TrimSpace(full))
	first, last := "Customer", "User"
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return truncate(first, 50), truncate(last, 50)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
