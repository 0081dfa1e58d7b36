package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

const (
	keyAuthToken      = "auth_token"
	keyPrePaymentAuth = "pre_payment_auth"

	// DefaultCredentialTTL bounds the lifetime of the long-lived credential
	// record.
	DefaultCredentialTTL = 24 * time.Hour

	// SnapshotTTL is the fixed lifetime of the pre-payment credential
	// snapshot.
	SnapshotTTL = 30 * time.Minute
)

// defaultObfuscationKey hides tokens from casual inspection of storage. The
// transform is a reversible XOR and is not a security control.
const defaultObfuscationKey = "payment_flow_key"

// TokenVault stores, retrieves and erases a bearer credential across the
// payment-redirect boundary. Storage availability is probed once at
// construction; on failure the vault degrades to a no-op that reports
// unauthenticated rather than surfacing errors to callers.
type TokenVault struct {
	store     ports.Store
	key       []byte
	available bool
	log       zerolog.Logger
	now       func() time.Time
}

// NewTokenVault creates a vault over the given store
func NewTokenVault(ctx context.Context, store ports.Store, log zerolog.Logger) *TokenVault {
	v := &TokenVault{
		store: store,
		key:   []byte(defaultObfuscationKey),
		log:   log.With().Str("component", "token_vault").Logger(),
		now:   time.Now,
	}

	if err := store.Ping(ctx); err != nil {
		v.log.Warn().Err(err).Msg("storage unavailable, vault degrades to no-op")
		v.available = false
	} else {
		v.available = true
	}

	return v
}

// Available reports whether the underlying storage passed the construction
// probe.
func (v *TokenVault) Available() bool {
	return v.available
}

// StoreOptions controls how a credential is written.
type StoreOptions struct {
	// Persistent selects the long-lived scope; otherwise the attempt scope.
	Persistent bool
	// Obfuscate applies the reversible XOR transform before writing.
	Obfuscate bool
	// TTL bounds the record lifetime; zero means DefaultCredentialTTL.
	TTL time.Duration
}

// Store writes a credential record. On unavailable storage it is a silent
// no-op.
func (v *TokenVault) Store(ctx context.Context, token string, opts StoreOptions) error {
	if !v.available || token == "" {
		return nil
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}

	now := v.now()
	cred := core.StoredCredential{
		Token:      token,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		Obfuscated: opts.Obfuscate,
	}
	if opts.Obfuscate {
		cred.Token = v.obfuscate(token)
	}

	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	return v.store.Set(ctx, scopeFor(opts.Persistent), keyAuthToken, string(raw), ttl)
}

// RetrieveOptions controls how a credential is read.
type RetrieveOptions struct {
	Persistent     bool
	ValidateExpiry bool
}

// Retrieve returns the stored credential with its token deobfuscated, or nil
// when absent. When ValidateExpiry is set, an expired record is deleted as a
// side effect of the read.
func (v *TokenVault) Retrieve(ctx context.Context, opts RetrieveOptions) (*core.StoredCredential, error) {
	if !v.available {
		return nil, nil
	}

	scope := scopeFor(opts.Persistent)
	raw, err := v.store.Get(ctx, scope, keyAuthToken)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cred core.StoredCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		// Corrupt record; purge it rather than failing every read.
		_ = v.store.Delete(ctx, scope, keyAuthToken)
		return nil, nil
	}

	if opts.ValidateExpiry && cred.Expired(v.now()) {
		_ = v.store.Delete(ctx, scope, keyAuthToken)
		return nil, nil
	}

	if cred.Obfuscated {
		cred.Token = v.deobfuscate(cred.Token)
		cred.Obfuscated = false
	}

	return &cred, nil
}

// ClearOptions controls which storage scopes Clear erases.
type ClearOptions struct {
	Persistent bool
	ClearAll   bool
}

// Clear erases one or both credential scopes.
func (v *TokenVault) Clear(ctx context.Context, opts ClearOptions) error {
	if !v.available {
		return nil
	}

	if opts.ClearAll {
		_ = v.store.Delete(ctx, ports.ScopePersistent, keyAuthToken)
		_ = v.store.Delete(ctx, ports.ScopeAttempt, keyAuthToken)
		return v.store.Delete(ctx, ports.ScopeAttempt, keyPrePaymentAuth)
	}

	return v.store.Delete(ctx, scopeFor(opts.Persistent), keyAuthToken)
}

// AuthStatus derives the current authentication state from the persistent
// credential record.
func (v *TokenVault) AuthStatus(ctx context.Context) core.AuthStatus {
	cred, err := v.Retrieve(ctx, RetrieveOptions{Persistent: true, ValidateExpiry: false})
	if err != nil || cred == nil {
		return core.AuthStatus{Authenticated: false, Reason: core.ReasonNoToken}
	}

	if cred.Expired(v.now()) {
		return core.AuthStatus{Authenticated: false, Reason: core.ReasonExpired}
	}

	return core.AuthStatus{Authenticated: true, Token: cred.Token}
}

// StoreSnapshot writes the pre-payment credential snapshot into the attempt
// scope with the fixed 30-minute lifetime. Always obfuscated.
func (v *TokenVault) StoreSnapshot(ctx context.Context, token string) error {
	if !v.available || token == "" {
		return nil
	}

	now := v.now()
	cred := core.StoredCredential{
		Token:      v.obfuscate(token),
		CreatedAt:  now,
		ExpiresAt:  now.Add(SnapshotTTL),
		Obfuscated: true,
	}

	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}

	return v.store.Set(ctx, ports.ScopeAttempt, keyPrePaymentAuth, string(raw), SnapshotTTL)
}

// RetrieveSnapshot returns the pre-payment snapshot, or nil when absent or
// older than its 30-minute lifetime. An expired snapshot is purged.
func (v *TokenVault) RetrieveSnapshot(ctx context.Context) (*core.StoredCredential, error) {
	if !v.available {
		return nil, nil
	}

	raw, err := v.store.Get(ctx, ports.ScopeAttempt, keyPrePaymentAuth)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cred core.StoredCredential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		_ = v.store.Delete(ctx, ports.ScopeAttempt, keyPrePaymentAuth)
		return nil, nil
	}

	if cred.Expired(v.now()) {
		_ = v.store.Delete(ctx, ports.ScopeAttempt, keyPrePaymentAuth)
		return nil, nil
	}

	if cred.Obfuscated {
		cred.Token = v.deobfuscate(cred.Token)
		cred.Obfuscated = false
	}

	return &cred, nil
}

// ClearSnapshot erases the pre-payment snapshot
func (v *TokenVault) ClearSnapshot(ctx context.Context) error {
	if !v.available {
		return nil
	}
	return v.store.Delete(ctx, ports.ScopeAttempt, keyPrePaymentAuth)
}

// SetNowFunc overrides the clock. For tests.
func (v *TokenVault) SetNowFunc(now func() time.Time) {
	v.now = now
}

func (v *TokenVault) obfuscate(token string) string {
	out := make([]byte, len(token))
	for i := 0; i < len(token); i++ {
		out[i] = token[i] ^ v.key[i%len(v.key)]
	}
	return base64.StdEncoding.EncodeToString(out)
}

func (v *TokenVault) deobfuscate(obfuscated string) string {
	decoded, err := base64.StdEncoding.DecodeString(obfuscated)
	if err != nil {
		// Not in the obfuscated format; treat as a plain token.
		return obfuscated
	}
	out := make([]byte, len(decoded))
	for i := 0; i < len(decoded); i++ {
		out[i] = decoded[i] ^ v.key[i%len(v.key)]
	}
	return string(out)
}

func scopeFor(persistent bool) ports.Scope {
	if persistent {
		return ports.ScopePersistent
	}
	return ports.ScopeAttempt
}
