package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Customization field kinds
const (
	FieldKindText   = "text"
	FieldKindSelect = "select"
	FieldKindColor  = "color"
	FieldKindRange  = "range"
)

// CustomizationField describes one configurable aspect of a product.
type CustomizationField struct {
	Kind    string      `json:"type"`
	Label   string      `json:"label,omitempty"`
	Default interface{} `json:"default,omitempty"`
	Options []string    `json:"options,omitempty"`
	Min     *float64    `json:"min,omitempty"`
	Max     *float64    `json:"max,omitempty"`
}

// CustomizationSchema maps a field name to its descriptor. Stored as JSONB.
type CustomizationSchema map[string]CustomizationField

func (s CustomizationSchema) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *CustomizationSchema) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// ValidFieldKind reports whether kind is one of the supported field kinds.
func ValidFieldKind(kind string) bool {
	switch kind {
	case FieldKindText, FieldKindSelect, FieldKindColor, FieldKindRange:
		return true
	}
	return false
}

// Product represents a catalog entry
type Product struct {
	ID                  int64               `db:"id" json:"id"`
	Title               string              `db:"title" json:"title"`
	Slug                string              `db:"slug" json:"slug"`
	Description         string              `db:"description" json:"description,omitempty"`
	Price               decimal.Decimal     `db:"price" json:"price"`
	Category            string              `db:"category" json:"category,omitempty"`
	Images              pq.StringArray      `db:"images" json:"images"`
	IsCustomizable      bool                `db:"is_customizable" json:"is_customizable"`
	CustomizationSchema CustomizationSchema `db:"customization_schema" json:"customization_schema,omitempty"`
	InventoryCount      int                 `db:"inventory_count" json:"inventory_count"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time           `db:"updated_at" json:"updated_at"`
}

// ProductSnapshot is a denormalized copy of product display data embedded in a
// line item, used when no live catalog reference applies.
type ProductSnapshot struct {
	Title  string           `json:"title,omitempty"`
	Slug   string           `json:"slug,omitempty"`
	Images []string         `json:"images,omitempty"`
	Price  *decimal.Decimal `json:"price,omitempty"`
}

// LineItem is embedded in an order; it is owned by that order and never
// independently addressable.
type LineItem struct {
	ProductID     *int64                 `json:"product_id,omitempty"`
	Title         string                 `json:"title"`
	Quantity      int                    `json:"quantity"`
	UnitPrice     decimal.Decimal        `json:"unit_price"`
	Customization map[string]interface{} `json:"customization,omitempty"`
	Snapshot      *ProductSnapshot       `json:"snapshot,omitempty"`
}

// LineItems is the JSONB items column of an order.
type LineItems []LineItem

func (li LineItems) Value() (driver.Value, error) {
	if li == nil {
		return json.Marshal(LineItems{})
	}
	return json.Marshal(li)
}

func (li *LineItems) Scan(src interface{}) error {
	return scanJSON(src, li)
}

// ShippingAddress is free-form structured data with a defined set of optional
// fields. Stored as JSONB.
type ShippingAddress struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src interface{}) error {
	return scanJSON(src, a)
}

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Fulfillment statuses
const (
	FulfillmentProcessing = "processing"
	FulfillmentShipped    = "shipped"
	FulfillmentDelivered  = "delivered"
)

// ValidFulfillmentStatus reports whether s is a known fulfillment status.
func ValidFulfillmentStatus(s string) bool {
	switch s {
	case FulfillmentProcessing, FulfillmentShipped, FulfillmentDelivered:
		return true
	}
	return false
}

// Order represents a customer order
type Order struct {
	ID                int64           `db:"id" json:"id"`
	OrderNumber       string          `db:"order_number" json:"order_number"`
	UserEmail         string          `db:"user_email" json:"user_email,omitempty"`
	Items             LineItems       `db:"items" json:"items"`
	ShippingAddress   ShippingAddress `db:"shipping_address" json:"shipping_address,omitempty"`
	PaymentIntentID   string          `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	PaymentStatus     string          `db:"payment_status" json:"payment_status"`
	FulfillmentStatus string          `db:"fulfillment_status" json:"fulfillment_status"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

func scanJSON(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	}
	return fmt.Errorf("unsupported JSONB source type %T", src)
}
