package core

import "time"

// PaymentStatus is the closed set of statuses the verify endpoint can report.
type PaymentStatus string

const (
	StatusPaid       PaymentStatus = "paid"
	StatusCompleted  PaymentStatus = "completed"
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusError      PaymentStatus = "error"
)

// Transient reports whether the status should trigger another verification
// attempt rather than ending the flow.
func (s PaymentStatus) Transient() bool {
	return s == StatusPending || s == StatusProcessing
}

// Terminal reports whether no further verification polling may occur.
func (s PaymentStatus) Terminal() bool {
	return !s.Transient()
}

// Success reports whether the status represents a settled payment.
func (s PaymentStatus) Success() bool {
	return s == StatusPaid || s == StatusCompleted
}

// ParseStatus normalises a provider-reported status string. Unknown values
// collapse to StatusError so callers always hold a member of the closed set.
func ParseStatus(raw string) PaymentStatus {
	switch PaymentStatus(raw) {
	case StatusPaid, StatusCompleted, StatusPending, StatusProcessing,
		StatusFailed, StatusCancelled, StatusError:
		return PaymentStatus(raw)
	}
	return StatusError
}

// PaymentSession is the bookkeeping record for one payment attempt, created
// immediately before the redirect and consumed after the user returns.
type PaymentSession struct {
	AttemptID string    `json:"attempt_id"`
	OrderID   string    `json:"order_id"`
	TxRef     string    `json:"tx_ref"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderSnapshot is the order view returned alongside a verification result.
type OrderSnapshot struct {
	ID            string        `json:"id"`
	Total         string        `json:"total"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// VerificationResult is the outcome of one verification cycle.
type VerificationResult struct {
	Success bool
	Status  PaymentStatus
	Order   *OrderSnapshot
	// Warning is set when the retry budget ran out on a still-transient
	// status and the flow resolved optimistically.
	Warning string
	Err     error
}
