package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypePaymentSucceeded   = "ORDER_PAYMENT_SUCCEEDED"
	EventTypePaymentFailed      = "ORDER_PAYMENT_FAILED"
	EventTypeFulfillmentUpdated = "ORDER_FULFILLMENT_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is persisted
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserEmail   string          `json:"user_email,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []LineItem      `json:"items"`
}

// OrderPaymentEvent published when a gateway notification reconciles an order
type OrderPaymentEvent struct {
	BaseEvent
	OrderID         int64  `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentStatus   string `json:"payment_status"`
}

// OrderFulfillmentUpdatedEvent published on an admin fulfillment change
type OrderFulfillmentUpdatedEvent struct {
	BaseEvent
	OrderID           int64  `json:"order_id"`
	OrderNumber       string `json:"order_number"`
	FulfillmentStatus string `json:"fulfillment_status"`
}
