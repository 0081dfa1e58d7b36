package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

const (
	keyPaymentSession      = "payment_session"
	keyPaymentError        = "payment_error"
	keyReturnPath          = "pre_payment_location"
	keyPendingVerification = "pending_verification"
)

// PaymentSessionStore records the bookkeeping for one payment attempt: the
// session itself plus the small attempt-scoped memos around it (return path,
// cached error payload, pending-verification marker).
type PaymentSessionStore struct {
	store ports.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewPaymentSessionStore creates a session store over the given store
func NewPaymentSessionStore(store ports.Store, log zerolog.Logger) *PaymentSessionStore {
	return &PaymentSessionStore{
		store: store,
		log:   log.With().Str("component", "payment_session").Logger(),
		now:   time.Now,
	}
}

// Begin creates a new payment session for the order, replacing any previous
// one. The transaction reference combines the order id with a high-resolution
// timestamp so re-initiating the same order never collides with a prior
// attempt.
func (s *PaymentSessionStore) Begin(ctx context.Context, orderID, amount string) (core.PaymentSession, error) {
	session := core.PaymentSession{
		AttemptID: uuid.New().String(),
		OrderID:   orderID,
		TxRef:     fmt.Sprintf("order-%s-%d", orderID, s.now().UnixNano()),
		Amount:    amount,
		CreatedAt: s.now(),
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return core.PaymentSession{}, fmt.Errorf("failed to encode payment session: %w", err)
	}

	if err := s.store.Set(ctx, ports.ScopeAttempt, keyPaymentSession, string(raw), 0); err != nil {
		return core.PaymentSession{}, fmt.Errorf("failed to store payment session: %w", err)
	}

	s.log.Debug().Str("order_id", orderID).Str("tx_ref", session.TxRef).Msg("payment session started")

	return session, nil
}

// Current returns the active payment session, or nil when none exists.
func (s *PaymentSessionStore) Current(ctx context.Context) (*core.PaymentSession, error) {
	raw, err := s.store.Get(ctx, ports.ScopeAttempt, keyPaymentSession)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session core.PaymentSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		_ = s.store.Delete(ctx, ports.ScopeAttempt, keyPaymentSession)
		return nil, nil
	}

	return &session, nil
}

// End destroys the active payment session
func (s *PaymentSessionStore) End(ctx context.Context) error {
	return s.store.Delete(ctx, ports.ScopeAttempt, keyPaymentSession)
}

// errorPayload is the cached failure detail shown on the failure surface.
type errorPayload struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// CacheError stores the failure detail for the current attempt
func (s *PaymentSessionStore) CacheError(ctx context.Context, message string) {
	raw, err := json.Marshal(errorPayload{Message: message, Timestamp: s.now()})
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, ports.ScopeAttempt, keyPaymentError, string(raw), 0); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache payment error")
	}
}

// CachedError returns the cached failure message, empty when none
func (s *PaymentSessionStore) CachedError(ctx context.Context) string {
	raw, err := s.store.Get(ctx, ports.ScopeAttempt, keyPaymentError)
	if err != nil {
		return ""
	}
	var p errorPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ""
	}
	return p.Message
}

// RememberReturnPath records where the user was before the redirect
func (s *PaymentSessionStore) RememberReturnPath(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.store.Set(ctx, ports.ScopeAttempt, keyReturnPath, path, 0); err != nil {
		s.log.Warn().Err(err).Msg("failed to store return path")
	}
}

// ReturnPath returns the pre-payment location, empty when unknown
func (s *PaymentSessionStore) ReturnPath(ctx context.Context) string {
	path, err := s.store.Get(ctx, ports.ScopeAttempt, keyReturnPath)
	if err != nil {
		return ""
	}
	return path
}

// MarkPendingVerification parks the order id so verification can resume
// after the user logs back in.
func (s *PaymentSessionStore) MarkPendingVerification(ctx context.Context, orderID string) {
	if err := s.store.Set(ctx, ports.ScopeAttempt, keyPendingVerification, orderID, 0); err != nil {
		s.log.Warn().Err(err).Msg("failed to mark pending verification")
	}
}

// PendingVerification returns the parked order id, empty when none
func (s *PaymentSessionStore) PendingVerification(ctx context.Context) string {
	orderID, err := s.store.Get(ctx, ports.ScopeAttempt, keyPendingVerification)
	if err != nil {
		return ""
	}
	return orderID
}

// SetNowFunc overrides the clock. For tests.
func (s *PaymentSessionStore) SetNowFunc(now func() time.Time) {
	s.now = now
}
