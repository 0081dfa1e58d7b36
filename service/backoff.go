package service

import "time"

// BackoffPolicy consolidates the retry budgets of the verification flow.
// The two budgets resolve differently on exhaustion: running out of verify
// attempts on a still-transient status resolves to success with a warning,
// while running out of network retries resolves to an error.
type BackoffPolicy struct {
	// MaxVerifyAttempts caps verify calls that come back with a transient
	// status.
	MaxVerifyAttempts int

	// MaxNetworkRetries caps additional attempts after transport failures.
	MaxNetworkRetries int

	// BaseDelay is the first retry delay when the provider suggests none.
	BaseDelay time.Duration

	// MaxDelay caps the growing delay between attempts.
	MaxDelay time.Duration
}

// DefaultBackoffPolicy returns the production retry budgets
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxVerifyAttempts: 10,
		MaxNetworkRetries: 3,
		BaseDelay:         3 * time.Second,
		MaxDelay:          5 * time.Second,
	}
}

// Delay returns the wait before the next verify attempt. A positive
// provider-suggested retryAfter (milliseconds) wins; otherwise the delay
// doubles from BaseDelay per attempt, capped at MaxDelay.
func (p BackoffPolicy) Delay(attempt int, retryAfterMS int) time.Duration {
	if retryAfterMS > 0 {
		return time.Duration(retryAfterMS) * time.Millisecond
	}

	if attempt < 1 {
		attempt = 1
	}
	d := p.BaseDelay << (attempt - 1)
	if d > p.MaxDelay || d <= 0 {
		return p.MaxDelay
	}
	return d
}
