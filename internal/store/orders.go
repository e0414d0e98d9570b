package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"craftstore/internal/models"
)

// CreateOrder inserts an order and fills in its generated fields.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_email, items, shipping_address,
			payment_intent_id, payment_status, fulfillment_status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return s.db.QueryRowxContext(ctx, query,
		order.OrderNumber, order.UserEmail, order.Items, order.ShippingAddress,
		order.PaymentIntentID, order.PaymentStatus, order.FulfillmentStatus, order.TotalAmount,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByPaymentIntentID retrieves the order correlated with a gateway
// transaction, for webhook events that carry no explicit order id.
func (s *Store) GetOrderByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE payment_intent_id = $1 ORDER BY created_at DESC LIMIT 1", intentID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order for payment intent %s", ErrNotFound, intentID)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePaymentStatus records a terminal gateway outcome. The assignment is a
// plain overwrite, so re-applying the same outcome is harmless.
func (s *Store) UpdatePaymentStatus(ctx context.Context, orderID int64, status, intentID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1, payment_intent_id = $2, updated_at = NOW() WHERE id = $3",
		status, intentID, orderID)
	if err != nil {
		return err
	}
	return requireRow(res, orderID)
}

// UpdateFulfillmentStatus sets the order's fulfillment status.
func (s *Store) UpdateFulfillmentStatus(ctx context.Context, orderID int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET fulfillment_status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	return requireRow(res, orderID)
}

// ListOrders returns one page of orders sorted by creation time descending,
// plus the total number of orders matching the filter. The query matches
// order number and customer email case-insensitively as a substring; LIKE
// metacharacters in the input are escaped.
func (s *Store) ListOrders(ctx context.Context, page, pageSize int, query string) ([]models.Order, int, error) {
	where := ""
	args := []interface{}{}
	if query != "" {
		where = ` WHERE order_number ILIKE $1 ESCAPE '\' OR user_email ILIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(query)+"%")
	}

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM orders"+where, args...); err != nil {
		return nil, 0, err
	}

	limit, offset := pageWindow(page, pageSize)
	listQuery := fmt.Sprintf(
		"SELECT * FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	orders := []models.Order{}
	if err := s.db.SelectContext(ctx, &orders, listQuery, args...); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func requireRow(res sql.Result, orderID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return nil
}
