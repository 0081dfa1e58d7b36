// Package payflow preserves authentication across a hosted-checkout redirect
// and resolves the outcome of the payment attempt afterwards. It bundles the
// credential vault, payment-session bookkeeping, the initiation handoff, the
// callback verification state machine and the session cleaner behind one
// embeddable facade.
package payflow

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/ports"
	"github.com/gebeta-eats/payflow/service"
)

// Config carries the knobs the flow bakes into provider payloads and retry
// scheduling.
type Config struct {
	// AppBaseURL is the storefront origin the provider redirects back to.
	AppBaseURL string
	// APIBaseURL is the backend origin for server-to-server callbacks.
	APIBaseURL string
	Currency   string
	Backoff    service.BackoffPolicy
}

// Flow wires the five payment-flow components over one storage port. The
// navigation effect is supplied per attempt, so Initiator and Verifier are
// built per call.
type Flow struct {
	config  Config
	vault   *service.TokenVault
	session *service.PaymentSessionStore
	cleaner *service.SessionCleaner
	gateway ports.PaymentGateway
	authAPI ports.AuthAPI
	events  ports.EventPublisher
	log     zerolog.Logger
}

// New creates a Flow. The store's availability is probed once here; an
// unavailable store degrades the credential vault to a no-op that reports
// unauthenticated.
func New(
	ctx context.Context,
	store ports.Store,
	gateway ports.PaymentGateway,
	authAPI ports.AuthAPI,
	events ports.EventPublisher,
	config Config,
	log zerolog.Logger,
) *Flow {
	if config.Backoff.MaxVerifyAttempts == 0 {
		config.Backoff = service.DefaultBackoffPolicy()
	}

	vault := service.NewTokenVault(ctx, store, log)
	sessions := service.NewPaymentSessionStore(store, log)

	return &Flow{
		config:  config,
		vault:   vault,
		session: sessions,
		cleaner: service.NewSessionCleaner(vault, store, log),
		gateway: gateway,
		authAPI: authAPI,
		events:  events,
		log:     log,
	}
}

// Vault returns the credential vault
func (f *Flow) Vault() *service.TokenVault {
	return f.vault
}

// Sessions returns the payment session store
func (f *Flow) Sessions() *service.PaymentSessionStore {
	return f.session
}

// Cleaner returns the session cleaner
func (f *Flow) Cleaner() *service.SessionCleaner {
	return f.cleaner
}

// Initiator builds a payment initiator bound to the given navigation effect.
func (f *Flow) Initiator(nav ports.Navigator) *service.PaymentInitiator {
	return service.NewPaymentInitiator(f.vault, f.session, f.gateway, nav, service.InitiatorConfig{
		AppBaseURL: f.config.AppBaseURL,
		APIBaseURL: f.config.APIBaseURL,
		Currency:   f.config.Currency,
	}, f.log)
}

// Verifier builds a callback verifier bound to the given navigation effect.
// Each callback arrival owns exactly one verifier instance.
func (f *Flow) Verifier(nav ports.Navigator) *service.CallbackVerifier {
	return service.NewCallbackVerifier(
		f.vault, f.session, f.cleaner,
		f.gateway, f.authAPI, nav, f.events,
		f.config.Backoff, f.log,
	)
}
