package ports

import "context"

// AuthAPI validates and refreshes bearer credentials against the backend.
type AuthAPI interface {
	// Validate reports whether the token is accepted by the backend.
	Validate(ctx context.Context, token string) (bool, error)

	// Refresh obtains a new access token using cookie-based refresh
	// semantics. Returns an empty string when no refresh is possible.
	Refresh(ctx context.Context) (string, error)
}
