package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"craftstore/internal/models"
	"craftstore/internal/store"
)

type fakeProductFinder struct {
	products map[int64]*models.Product
}

func (f *fakeProductFinder) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: product %d", store.ErrNotFound, id)
}

type listCall struct {
	page     int
	pageSize int
	query    string
}

type fakeOrderStore struct {
	mu       sync.Mutex
	orders   map[int64]*models.Order
	nextID   int64
	lastList *listCall
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[int64]*models.Order{}}
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	order.ID = f.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: order %d", store.ErrNotFound, id)
}

func (f *fakeOrderStore) GetOrderByPaymentIntentID(_ context.Context, intentID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.PaymentIntentID == intentID && intentID != "" {
			cp := *o
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: order for payment intent %s", store.ErrNotFound, intentID)
}

func (f *fakeOrderStore) UpdatePaymentStatus(_ context.Context, orderID int64, status, intentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", store.ErrNotFound, orderID)
	}
	o.PaymentStatus = status
	o.PaymentIntentID = intentID
	return nil
}

func (f *fakeOrderStore) UpdateFulfillmentStatus(_ context.Context, orderID int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", store.ErrNotFound, orderID)
	}
	o.FulfillmentStatus = status
	return nil
}

func (f *fakeOrderStore) ListOrders(_ context.Context, page, pageSize int, query string) ([]models.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = &listCall{page: page, pageSize: pageSize, query: query}
	out := make([]models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

type fakePublisher struct {
	mu            sync.Mutex
	created       []*models.OrderCreatedEvent
	payments      []*models.OrderPaymentEvent
	fulfillments  []*models.OrderFulfillmentUpdatedEvent
	publishErrors bool
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErrors {
		return fmt.Errorf("broker down")
	}
	f.created = append(f.created, e)
	return nil
}

func (f *fakePublisher) PublishOrderPayment(_ context.Context, e *models.OrderPaymentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErrors {
		return fmt.Errorf("broker down")
	}
	f.payments = append(f.payments, e)
	return nil
}

func (f *fakePublisher) PublishFulfillmentUpdated(_ context.Context, e *models.OrderFulfillmentUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErrors {
		return fmt.Errorf("broker down")
	}
	f.fulfillments = append(f.fulfillments, e)
	return nil
}

type fakeDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
	fail bool
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{seen: map[string]bool{}}
}

func (f *fakeDeduper) MarkEventSeen(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false, fmt.Errorf("redis down")
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}
