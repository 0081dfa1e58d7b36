package core

import "errors"

var (
	ErrAuthenticationRequired  = errors.New("authentication required")
	ErrInvalidAmount           = errors.New("invalid payment amount")
	ErrInvalidProviderResponse = errors.New("invalid response from payment provider")
	ErrNetwork                 = errors.New("network error")
	ErrVerificationFailed      = errors.New("payment verification failed")
	ErrMaxRetriesExceeded      = errors.New("verification retry budget exhausted")
	ErrStorageUnavailable      = errors.New("storage unavailable")
)

// IsRetryable reports whether the error is transient and the operation that
// produced it may be attempted again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
