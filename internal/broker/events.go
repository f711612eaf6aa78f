package broker

import (
	"context"
	"fmt"

	"storefront-checkout/internal/models"
)

// EventPublisher publishes checkout lifecycle events, keyed by session so
// one session's events stay ordered on a partition.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderSubmissionFailed publishes OrderSubmissionFailed event
func (ep *EventPublisher) PublishOrderSubmissionFailed(ctx context.Context, event *models.OrderSubmissionFailedEvent) error {
	key := fmt.Sprintf("session-%s", event.SessionID)
	return ep.producer.PublishEvent(ctx, key, event)
}
