package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"craftstore/internal/models"
	"craftstore/internal/store"
	"craftstore/internal/util"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

const (
	// MetadataOrderIDKey is the correlation-id key threaded through gateway
	// metadata to link a webhook notification back to the originating order.
	MetadataOrderIDKey = "order_id"

	intentIDPrefix  = "pi_"
	webhookDedupTTL = 24 * time.Hour
)

// EventDeduper short-circuits webhook events that were already handled.
// Best effort: reconciliation is an idempotent overwrite, so a dedup failure
// only costs a redundant write.
type EventDeduper interface {
	MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// PaymentService talks to the Stripe gateway and reconciles its asynchronous
// notifications against orders.
type PaymentService struct {
	orders    OrderStore
	resolver  *PriceResolver
	publisher EventPublisher
	dedup     EventDeduper
	logger    *zap.Logger

	secretKey     string
	webhookSecret string
	currency      string
}

// NewPaymentService creates a new payment service. An empty secretKey
// disables payment-intent creation; an empty webhookSecret puts webhook
// handling in the insecure unverified mode intended for development only.
func NewPaymentService(
	orders OrderStore,
	resolver *PriceResolver,
	publisher EventPublisher,
	dedup EventDeduper,
	secretKey, webhookSecret, currency string,
) *PaymentService {
	stripe.Key = secretKey

	logger := util.GetLogger()
	if secretKey == "" {
		logger.Warn("Stripe secret key not configured; payment creation disabled")
	}
	if webhookSecret == "" {
		logger.Warn("Stripe webhook secret not configured; webhook events will be trusted UNVERIFIED (insecure, development only)")
	}

	return &PaymentService{
		orders:        orders,
		resolver:      resolver,
		publisher:     publisher,
		dedup:         dedup,
		logger:        logger,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		currency:      currency,
	}
}

// PaymentIntentResult is returned to the client for gateway-side confirmation.
type PaymentIntentResult struct {
	ClientSecret  string `json:"client_secret"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

// PaymentIntentSummary is the read-side view of a gateway transaction.
type PaymentIntentSummary struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreatePaymentIntent recomputes the total server-side and requests a gateway
// transaction for it. A client-supplied amount is never trusted.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, items []ItemRequest, metadata map[string]string, currency string) (*PaymentIntentResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreatePaymentIntent")
	defer span.End()

	if s.secretKey == "" {
		return nil, ErrGatewayDisabled
	}

	_, total, err := s.resolver.Resolve(ctx, items)
	if err != nil {
		util.PaymentIntentsFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	amount := ToSmallestUnit(total)
	if amount <= 0 {
		util.PaymentIntentsFailedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, fmt.Errorf("%w: computed amount must be positive", ErrValidation)
	}

	if currency == "" {
		currency = s.currency
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		util.PaymentIntentsFailedTotal.WithLabelValues("gateway_error").Inc()
		s.logger.Error("Failed to create payment intent", zap.Error(err))
		return nil, fmt.Errorf("%w: payment gateway error", ErrUnavailable)
	}

	util.PaymentIntentsCreatedTotal.Inc()
	s.logger.Info("Payment intent created",
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))

	return &PaymentIntentResult{
		ClientSecret:  pi.ClientSecret,
		TransactionID: pi.ID,
		Amount:        amount,
		Currency:      currency,
	}, nil
}

// GetPaymentIntent retrieves a transaction summary from the gateway.
func (s *PaymentService) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntentSummary, error) {
	if s.secretKey == "" {
		return nil, ErrGatewayDisabled
	}
	if !strings.HasPrefix(intentID, intentIDPrefix) {
		return nil, fmt.Errorf("%w: invalid payment intent id", ErrValidation)
	}

	pi, err := paymentintent.Get(intentID, nil)
	if err != nil {
		s.logger.Error("Failed to fetch payment intent",
			zap.String("intent_id", intentID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: payment gateway error", ErrUnavailable)
	}

	return &PaymentIntentSummary{
		ID:       pi.ID,
		Amount:   pi.Amount,
		Currency: string(pi.Currency),
		Status:   string(pi.Status),
		Metadata: pi.Metadata,
	}, nil
}

// HandleWebhook processes a raw gateway notification. The payload must be the
// exact bytes received on the wire; signature verification fails on
// re-serialized JSON. Once verification passes, the event is always
// acknowledged: an unmatched order is a logged no-op, not an error to the
// gateway.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandleWebhook")
	defer span.End()

	var event stripe.Event
	if s.webhookSecret != "" {
		verified, err := webhook.ConstructEvent(payload, sigHeader, s.webhookSecret)
		if err != nil {
			util.WebhookEventsTotal.WithLabelValues("unknown", "signature_failed").Inc()
			return fmt.Errorf("%w: webhook signature verification failed", ErrValidation)
		}
		event = verified
	} else {
		if err := json.Unmarshal(payload, &event); err != nil {
			util.WebhookEventsTotal.WithLabelValues("unknown", "malformed").Inc()
			return fmt.Errorf("%w: malformed webhook payload", ErrValidation)
		}
	}

	switch string(event.Type) {
	case "payment_intent.succeeded":
		return s.reconcile(ctx, &event, models.PaymentStatusSucceeded)
	case "payment_intent.payment_failed":
		return s.reconcile(ctx, &event, models.PaymentStatusFailed)
	default:
		s.logger.Debug("Ignoring gateway event", zap.String("type", string(event.Type)))
		util.WebhookEventsTotal.WithLabelValues(string(event.Type), "ignored").Inc()
		return nil
	}
}

// reconcile locates the order targeted by a terminal gateway outcome and
// overwrites its payment status. pending -> succeeded and pending -> failed
// are both terminal for this handler.
func (s *PaymentService) reconcile(ctx context.Context, event *stripe.Event, status string) error {
	eventType := string(event.Type)

	if event.ID != "" && s.dedup != nil {
		first, err := s.dedup.MarkEventSeen(ctx, event.ID, webhookDedupTTL)
		if err != nil {
			s.logger.Warn("Webhook dedup unavailable, processing anyway", zap.Error(err))
		} else if !first {
			s.logger.Info("Duplicate webhook event skipped", zap.String("event_id", event.ID))
			util.WebhookEventsTotal.WithLabelValues(eventType, "duplicate").Inc()
			return nil
		}
	}

	if event.Data == nil {
		s.logger.Warn("Webhook event carried no data object",
			zap.String("event_id", event.ID))
		util.WebhookEventsTotal.WithLabelValues(eventType, "malformed").Inc()
		return nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.logger.Warn("Webhook event carried an unreadable payment intent",
			zap.String("event_id", event.ID),
			zap.Error(err))
		util.WebhookEventsTotal.WithLabelValues(eventType, "malformed").Inc()
		return nil
	}

	order, err := s.findOrder(ctx, &pi)
	if err != nil {
		util.WebhookEventsTotal.WithLabelValues(eventType, "store_error").Inc()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if order == nil {
		s.logger.Warn("No order matched gateway notification",
			zap.String("intent_id", pi.ID),
			zap.String("metadata_order_id", pi.Metadata[MetadataOrderIDKey]))
		util.WebhookEventsTotal.WithLabelValues(eventType, "unmatched").Inc()
		return nil
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.orders.UpdatePaymentStatus(sctx, order.ID, status, pi.ID); err != nil {
		util.WebhookEventsTotal.WithLabelValues(eventType, "store_error").Inc()
		return fmt.Errorf("%w: failed to update payment status: %v", ErrUnavailable, err)
	}

	s.logger.Info("Order payment status reconciled",
		zap.Int64("order_id", order.ID),
		zap.String("intent_id", pi.ID),
		zap.String("status", status))
	util.WebhookEventsTotal.WithLabelValues(eventType, "reconciled").Inc()

	paymentEvent := &models.OrderPaymentEvent{
		BaseEvent:       newBaseEvent(paymentEventType(status)),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PaymentIntentID: pi.ID,
		PaymentStatus:   status,
	}
	if err := s.publisher.PublishOrderPayment(ctx, paymentEvent); err != nil {
		s.logger.Error("Failed to publish payment event", zap.Error(err))
	}

	return nil
}

// findOrder resolves the target order by the explicit order-id correlation in
// metadata, falling back to a lookup by the gateway transaction id. A nil
// order with nil error means nothing matched.
func (s *PaymentService) findOrder(ctx context.Context, pi *stripe.PaymentIntent) (*models.Order, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if raw := pi.Metadata[MetadataOrderIDKey]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			order, err := s.orders.GetOrderByID(sctx, id)
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
		}
	}

	if pi.ID != "" {
		order, err := s.orders.GetOrderByPaymentIntentID(sctx, pi.ID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

func paymentEventType(status string) string {
	if status == models.PaymentStatusSucceeded {
		return models.EventTypePaymentSucceeded
	}
	return models.EventTypePaymentFailed
}
