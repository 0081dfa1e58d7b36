package ports

import (
	"context"
	"errors"
	"time"
)

// Scope names a storage area. ScopePersistent survives across visits (the
// long-lived credential lives there); ScopeAttempt is scoped to one payment
// attempt and holds the pre-payment snapshot, the payment session record and
// cached error payloads.
type Scope string

const (
	ScopePersistent Scope = "persistent"
	ScopeAttempt    Scope = "attempt"
)

// ErrNotFound is returned by Get for a missing or expired key.
var ErrNotFound = errors.New("key not found")

// Store is a scoped key-value store with per-key expiry. Writes are
// last-write-wins; no cross-process coordination is attempted, so readers
// must tolerate another instance mutating the same keys.
type Store interface {
	// Set writes a value under the scope. A zero ttl means no expiry.
	Set(ctx context.Context, scope Scope, key, value string, ttl time.Duration) error

	// Get retrieves a value, returning ErrNotFound for missing or expired keys.
	Get(ctx context.Context, scope Scope, key string) (string, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, scope Scope, key string) error

	// Ping reports whether the store is usable. Callers probe once at
	// construction and degrade to a no-op on failure.
	Ping(ctx context.Context) error
}
