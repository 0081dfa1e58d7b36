package ports

import (
	"context"

	"github.com/gebeta-eats/payflow/core"
)

// EventPublisher notifies other parts of the system about terminal payment
// outcomes.
type EventPublisher interface {
	PublishOutcome(ctx context.Context, orderID, txRef string, status core.PaymentStatus) error
}
