package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"craftstore/internal/models"
	"craftstore/internal/store"
	"craftstore/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const storeTimeout = 5 * time.Second

// OrderStore is the slice of the order store the services need.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID int64, status, intentID string) error
	UpdateFulfillmentStatus(ctx context.Context, orderID int64, status string) error
	ListOrders(ctx context.Context, page, pageSize int, query string) ([]models.Order, int, error)
}

// EventPublisher publishes order lifecycle events. Publishing is best effort:
// a broker failure is logged, never surfaced to the client.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPayment(ctx context.Context, event *models.OrderPaymentEvent) error
	PublishFulfillmentUpdated(ctx context.Context, event *models.OrderFulfillmentUpdatedEvent) error
}

// OrderService handles order business logic
type OrderService struct {
	store     OrderStore
	resolver  *PriceResolver
	publisher EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderStore OrderStore, resolver *PriceResolver, publisher EventPublisher) *OrderService {
	return &OrderService{
		store:     orderStore,
		resolver:  resolver,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	Items           []ItemRequest           `json:"items"`
	UserEmail       string                  `json:"user_email,omitempty"`
	ShippingAddress *models.ShippingAddress `json:"shipping_address,omitempty"`
}

// CreateOrder resolves prices server-side and persists the order in pending
// payment state. The payment gateway is not contacted here; payment-intent
// creation is a separate call driven by the client.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	items, total, err := s.resolver.Resolve(ctx, req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	order := &models.Order{
		OrderNumber:       generateOrderNumber(),
		UserEmail:         req.UserEmail,
		Items:             items,
		PaymentStatus:     models.PaymentStatusPending,
		FulfillmentStatus: models.FulfillmentProcessing,
		TotalAmount:       total,
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = *req.ShippingAddress
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.store.CreateOrder(sctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("%w: failed to create order: %v", ErrUnavailable, err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()))

	event := &models.OrderCreatedEvent{
		BaseEvent:   newBaseEvent(models.EventTypeOrderCreated),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserEmail:   order.UserEmail,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	order, err := s.store.GetOrderByID(sctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return order, nil
}

// ListOrders returns one page of orders plus the total match count. Page is
// 1-based; pageSize is clamped to [1,100].
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, query string) ([]models.Order, int, error) {
	page, pageSize = ClampPage(page, pageSize)

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	orders, total, err := s.store.ListOrders(sctx, page, pageSize, strings.TrimSpace(query))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return orders, total, nil
}

// UpdateFulfillmentStatus sets the fulfillment status from the admin surface.
// The status is validated against the known set.
func (s *OrderService) UpdateFulfillmentStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	if !models.ValidFulfillmentStatus(status) {
		return nil, fmt.Errorf("%w: unknown fulfillment status %q", ErrValidation, status)
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.store.UpdateFulfillmentStatus(sctx, orderID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	order, err := s.store.GetOrderByID(sctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.logger.Info("Fulfillment status updated",
		zap.Int64("order_id", orderID),
		zap.String("status", status))

	event := &models.OrderFulfillmentUpdatedEvent{
		BaseEvent:         newBaseEvent(models.EventTypeFulfillmentUpdated),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		FulfillmentStatus: status,
	}
	if err := s.publisher.PublishFulfillmentUpdated(ctx, event); err != nil {
		s.logger.Error("Failed to publish FulfillmentUpdated event", zap.Error(err))
	}

	return order, nil
}

// ClampPage normalizes pagination params: page is 1-based, pageSize is held
// to [1,100]. Callers echoing the params back must echo the clamped values.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	} else if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func generateOrderNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(raw[:10])
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
