package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

// VerifierState names a state of the callback verification machine. The
// verifying state loops back on itself while the provider reports a
// transient status.
type VerifierState string

const (
	StateLoading        VerifierState = "loading"
	StateAuthenticating VerifierState = "authenticating"
	StateVerifying      VerifierState = "verifying"
	StateDone           VerifierState = "done"
)

// CallbackParams carries everything the return navigation delivered: the
// order id plus the optional tx_ref and short-lived session token query
// parameters.
type CallbackParams struct {
	OrderID     string
	TxRef       string
	AuthToken   string
	RestoreAuth bool
}

// CallbackVerifier drives the inbound half of the flow after the user comes
// back from the hosted checkout page: it restores a usable credential, then
// polls the verify endpoint until a terminal outcome or exhausted budget.
// One verifier instance serves one callback arrival; attempts for a given
// order are strictly sequential, and the passed context is the cancellation
// token for pending retry timers.
type CallbackVerifier struct {
	vault    *TokenVault
	sessions *PaymentSessionStore
	cleaner  *SessionCleaner
	gateway  ports.PaymentGateway
	authAPI  ports.AuthAPI
	nav      ports.Navigator
	events   ports.EventPublisher
	policy   BackoffPolicy
	log      zerolog.Logger

	mu    sync.Mutex
	state VerifierState

	// sleep suspends between attempts and honors cancellation. Replaced in
	// tests to avoid real timers.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewCallbackVerifier creates a verifier with the given retry policy.
func NewCallbackVerifier(
	vault *TokenVault,
	sessions *PaymentSessionStore,
	cleaner *SessionCleaner,
	gateway ports.PaymentGateway,
	authAPI ports.AuthAPI,
	nav ports.Navigator,
	events ports.EventPublisher,
	policy BackoffPolicy,
	log zerolog.Logger,
) *CallbackVerifier {
	return &CallbackVerifier{
		vault:    vault,
		sessions: sessions,
		cleaner:  cleaner,
		gateway:  gateway,
		authAPI:  authAPI,
		nav:      nav,
		events:   events,
		policy:   policy,
		log:      log.With().Str("component", "callback_verifier").Logger(),
		state:    StateLoading,
		sleep:    sleepCtx,
	}
}

// SetSleepFunc overrides the retry timer. For tests.
func (v *CallbackVerifier) SetSleepFunc(sleep func(ctx context.Context, d time.Duration) error) {
	v.sleep = sleep
}

// State returns the current machine state
func (v *CallbackVerifier) State() VerifierState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *CallbackVerifier) transition(s VerifierState) {
	v.mu.Lock()
	v.state = s
	v.mu.Unlock()
}

// Run executes the whole verification flow and always resolves to a
// well-defined terminal result; it never panics into the caller.
func (v *CallbackVerifier) Run(ctx context.Context, params CallbackParams) core.VerificationResult {
	v.transition(StateLoading)

	if params.OrderID == "" {
		v.transition(StateDone)
		return core.VerificationResult{
			Status: core.StatusError,
			Err:    fmt.Errorf("%w: order id is required", core.ErrVerificationFailed),
		}
	}

	v.transition(StateAuthenticating)
	token, err := v.restoreCredential(ctx, params)
	if err != nil {
		v.log.Warn().Err(err).Str("order_id", params.OrderID).Msg("credential restoration failed")
		v.sessions.MarkPendingVerification(ctx, params.OrderID)
		v.transition(StateDone)
		return core.VerificationResult{
			Status: core.StatusError,
			Err:    core.ErrAuthenticationRequired,
		}
	}

	v.transition(StateVerifying)
	result := v.verifyLoop(ctx, params, token)
	v.transition(StateDone)
	v.finalize(ctx, params, result)

	return result
}

// restoreCredential walks the restoration ladder: URL token, existing
// credential, cookie refresh, pre-payment snapshot.
func (v *CallbackVerifier) restoreCredential(ctx context.Context, params CallbackParams) (string, error) {
	// 1. Short-lived session token on the return URL: adopt and strip it
	// immediately so it never lands in history or shared links.
	if params.AuthToken != "" {
		if err := v.vault.Store(ctx, params.AuthToken, StoreOptions{Persistent: true, Obfuscate: true}); err != nil {
			v.log.Warn().Err(err).Msg("failed to persist restored token")
		}
		if err := v.nav.ReplaceQuery("authToken", "session", "restoreAuth"); err != nil {
			v.log.Warn().Err(err).Msg("failed to strip auth token from URL")
		}
		v.log.Info().Msg("credential adopted from return URL")
		return params.AuthToken, nil
	}

	// 2. Existing long-lived credential, validated against the backend. A
	// locally expired JWT skips the round trip.
	if cred, _ := v.vault.Retrieve(ctx, RetrieveOptions{Persistent: true, ValidateExpiry: true}); cred != nil {
		if jwtLocallyExpired(cred.Token, time.Now()) {
			v.log.Debug().Msg("stored credential locally expired, skipping validation")
		} else if ok, err := v.authAPI.Validate(ctx, cred.Token); err == nil && ok {
			return cred.Token, nil
		}
	}

	// 3. Cookie-based refresh.
	if refreshed, err := v.authAPI.Refresh(ctx); err == nil && refreshed != "" {
		if err := v.vault.Store(ctx, refreshed, StoreOptions{Persistent: true, Obfuscate: true}); err != nil {
			v.log.Warn().Err(err).Msg("failed to persist refreshed token")
		}
		v.log.Info().Msg("credential refreshed via cookie")
		return refreshed, nil
	}

	// 4. Pre-payment snapshot, validated before use. The vault enforces the
	// 30-minute lifetime.
	if snap, _ := v.vault.RetrieveSnapshot(ctx); snap != nil {
		if ok, err := v.authAPI.Validate(ctx, snap.Token); err == nil && ok {
			if err := v.vault.Store(ctx, snap.Token, StoreOptions{Persistent: true, Obfuscate: true}); err != nil {
				v.log.Warn().Err(err).Msg("failed to promote snapshot credential")
			}
			_ = v.vault.ClearSnapshot(ctx)
			v.log.Info().Msg("credential restored from pre-payment snapshot")
			return snap.Token, nil
		}
	}

	return "", core.ErrAuthenticationRequired
}

// verifyLoop polls the verify endpoint until a terminal status or an
// exhausted budget. Verify attempts and network retries are budgeted
// separately.
func (v *CallbackVerifier) verifyLoop(ctx context.Context, params CallbackParams, token string) core.VerificationResult {
	txRef := params.TxRef
	if txRef == "" {
		if session, _ := v.sessions.Current(ctx); session != nil && session.OrderID == params.OrderID {
			txRef = session.TxRef
		}
	}

	attempts := 0
	netRetries := 0

	for {
		if err := ctx.Err(); err != nil {
			return core.VerificationResult{Status: core.StatusError, Err: err}
		}

		attempts++
		resp, err := v.verifyOnce(ctx, token, params.OrderID, txRef)
		if err != nil {
			if core.IsRetryable(err) && netRetries < v.policy.MaxNetworkRetries {
				netRetries++
				attempts-- // transport failures do not consume the verify budget
				v.log.Warn().Err(err).Int("retry", netRetries).Msg("network error during verification, retrying")
				if serr := v.sleep(ctx, v.policy.BaseDelay); serr != nil {
					return core.VerificationResult{Status: core.StatusError, Err: serr}
				}
				continue
			}
			return core.VerificationResult{Status: core.StatusError, Err: err}
		}

		if !resp.Success {
			msg := resp.Message
			if msg == "" {
				msg = "verification rejected by backend"
			}
			return core.VerificationResult{
				Status: core.StatusError,
				Err:    fmt.Errorf("%w: %s", core.ErrVerificationFailed, msg),
			}
		}

		status := resp.Status
		if status.Transient() {
			if attempts >= v.policy.MaxVerifyAttempts {
				// Still settling after the whole budget. Resolve
				// optimistically and flag the delay.
				v.log.Warn().
					Str("order_id", params.OrderID).
					Int("attempts", attempts).
					Msg("verification budget exhausted on transient status, resolving as delayed success")
				return core.VerificationResult{
					Success: true,
					Status:  core.StatusCompleted,
					Order:   resp.Order,
					Warning: "verification_delayed",
					Err:     core.ErrMaxRetriesExceeded,
				}
			}

			delay := v.policy.Delay(attempts, resp.RetryAfter)
			v.log.Debug().
				Str("order_id", params.OrderID).
				Str("status", string(status)).
				Dur("delay", delay).
				Int("attempt", attempts).
				Msg("payment still settling, scheduling retry")
			if serr := v.sleep(ctx, delay); serr != nil {
				return core.VerificationResult{Status: core.StatusError, Err: serr}
			}
			continue
		}

		result := core.VerificationResult{
			Success: status.Success(),
			Status:  status,
			Order:   resp.Order,
		}
		if !result.Success {
			result.Err = fmt.Errorf("%w: payment %s", core.ErrVerificationFailed, status)
		}
		return result
	}
}

func (v *CallbackVerifier) verifyOnce(ctx context.Context, token, orderID, txRef string) (ports.VerifyResponse, error) {
	if txRef != "" {
		return v.gateway.VerifyByRef(ctx, token, txRef)
	}
	return v.gateway.VerifyByOrder(ctx, token, orderID)
}

// finalize settles storage and publishes the outcome. Provider-terminal
// outcomes (paid, completed, failed, cancelled) clean all payment-scoped
// storage; a verification error instead caches the failure detail for the
// failure surface, leaving cleanup to teardown. Run skips finalize entirely
// on restoration failures so a resumed attempt after login still finds the
// session and snapshot.
func (v *CallbackVerifier) finalize(ctx context.Context, params CallbackParams, result core.VerificationResult) {
	txRef := params.TxRef
	if session, _ := v.sessions.Current(ctx); session != nil && txRef == "" {
		txRef = session.TxRef
	}

	if result.Status == core.StatusError {
		if result.Err != nil {
			v.sessions.CacheError(ctx, result.Err.Error())
		}
	} else {
		if err := v.cleaner.Cleanup(ctx); err != nil {
			v.log.Warn().Err(err).Msg("payment session cleanup failed")
		}
		if v.events != nil {
			if err := v.events.PublishOutcome(ctx, params.OrderID, txRef, result.Status); err != nil {
				v.log.Warn().Err(err).Msg("failed to publish payment outcome")
			}
		}
	}

	v.log.Info().
		Str("order_id", params.OrderID).
		Str("status", string(result.Status)).
		Bool("success", result.Success).
		Msg("payment verification resolved")
}

// jwtLocallyExpired reports whether the token is a JWT whose exp claim is in
// the past. Parsing is unverified; this is only a fast path to skip a
// round trip, never an acceptance decision.
func jwtLocallyExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
