package core

import "time"

// StoredCredential is a bearer credential at rest. The Token field may hold
// either the raw token or its obfuscated form; Obfuscated says which.
type StoredCredential struct {
	Token      string    `json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Obfuscated bool      `json:"obfuscated"`
}

// Expired reports whether the credential is past its expiry at the given time.
func (c StoredCredential) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// AuthReason explains why AuthStatus reports unauthenticated.
type AuthReason string

const (
	ReasonNoToken AuthReason = "no_token"
	ReasonExpired AuthReason = "expired"
)

// AuthStatus is the derived authentication state of the vault.
type AuthStatus struct {
	Authenticated bool
	Token         string
	Reason        AuthReason
}
