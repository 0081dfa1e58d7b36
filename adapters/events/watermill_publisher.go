package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
)

// OutcomeEvent represents a terminal payment outcome
type OutcomeEvent struct {
	OrderID    string `json:"order_id"`
	TxRef      string `json:"tx_ref"`
	Status     string `json:"status"`
	ResolvedAt string `json:"resolved_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "payflow.payment.outcome",
	}
}

// PublishOutcome publishes a terminal payment outcome event
func (p *WatermillPublisher) PublishOutcome(ctx context.Context, orderID, txRef string, status core.PaymentStatus) error {
	event := OutcomeEvent{
		OrderID:    orderID,
		TxRef:      txRef,
		Status:     string(status),
		ResolvedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
