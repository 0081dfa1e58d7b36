package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/ports"
)

// SessionCleaner erases all payment-scoped storage: the pre-payment
// credential snapshot, the payment session record, and the attempt-scoped
// memos around them. Cleanup is idempotent and safe to call when nothing is
// stored.
type SessionCleaner struct {
	vault *TokenVault
	store ports.Store
	log   zerolog.Logger
}

// NewSessionCleaner creates a new cleaner
func NewSessionCleaner(vault *TokenVault, store ports.Store, log zerolog.Logger) *SessionCleaner {
	return &SessionCleaner{
		vault: vault,
		store: store,
		log:   log.With().Str("component", "session_cleaner").Logger(),
	}
}

// Cleanup erases all payment-attempt storage. The long-lived credential is
// left alone.
func (c *SessionCleaner) Cleanup(ctx context.Context) error {
	var firstErr error

	if err := c.vault.ClearSnapshot(ctx); err != nil {
		firstErr = err
	}

	for _, key := range []string{
		keyPaymentSession,
		keyPaymentError,
		keyReturnPath,
		keyPendingVerification,
	} {
		if err := c.store.Delete(ctx, ports.ScopeAttempt, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		c.log.Warn().Err(firstErr).Msg("partial payment session cleanup")
	}

	return firstErr
}
