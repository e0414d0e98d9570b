package broker

import (
	"context"
	"fmt"

	"craftstore/internal/models"
)

// EventPublisher publishes order lifecycle events for downstream consumers
// (fulfillment tooling, analytics). Delivery is at-least-once; consumers are
// expected to dedup on event id.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderCreated publishes an OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderPayment publishes a payment succeeded/failed event
func (ep *EventPublisher) PublishOrderPayment(ctx context.Context, event *models.OrderPaymentEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishFulfillmentUpdated publishes a fulfillment status change
func (ep *EventPublisher) PublishFulfillmentUpdated(ctx context.Context, event *models.OrderFulfillmentUpdatedEvent) error {
	return ep.producer.PublishEvent(ctx, orderKey(event.OrderID), event)
}

func orderKey(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}
