package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"craftstore/internal/models"
	"craftstore/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const catalogLookupTimeout = 3 * time.Second

// ProductFinder is the slice of the catalog store the resolver needs.
type ProductFinder interface {
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
}

// ItemRequest is a requested line item as submitted by a client. ProductRef
// may be absent, or reference something that is not a catalog entry at all
// (demo/external items); both take the fallback path.
type ItemRequest struct {
	ProductRef    string                  `json:"product_id,omitempty"`
	Quantity      int                     `json:"quantity"`
	UnitPrice     *decimal.Decimal        `json:"unit_price,omitempty"`
	Title         string                  `json:"title,omitempty"`
	Customization map[string]interface{}  `json:"customization,omitempty"`
	Snapshot      *models.ProductSnapshot `json:"snapshot,omitempty"`
}

// PriceResolver computes authoritative unit prices and totals. The catalog is
// the source of truth for catalog-backed items; client-supplied prices are
// only honored for items the catalog cannot resolve.
type PriceResolver struct {
	products ProductFinder
	logger   *zap.Logger
}

// NewPriceResolver creates a new price resolver
func NewPriceResolver(products ProductFinder) *PriceResolver {
	return &PriceResolver{
		products: products,
		logger:   util.GetLogger(),
	}
}

// Resolve produces the resolved line items and their total. Malformed
// individual items degrade to the fallback path; only an empty item list is
// an error.
func (r *PriceResolver) Resolve(ctx context.Context, items []ItemRequest) ([]models.LineItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}

	resolved := make([]models.LineItem, 0, len(items))
	total := decimal.Zero

	for _, item := range items {
		line := r.resolveItem(ctx, item)
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		resolved = append(resolved, line)
	}

	return resolved, total, nil
}

func (r *PriceResolver) resolveItem(ctx context.Context, item ItemRequest) models.LineItem {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	line := models.LineItem{
		Quantity:      qty,
		Customization: item.Customization,
	}

	if id, ok := parseProductRef(item.ProductRef); ok {
		start := time.Now()
		lctx, cancel := context.WithTimeout(ctx, catalogLookupTimeout)
		product, err := r.products.GetProductByID(lctx, id)
		cancel()
		util.CatalogLookupLatency.Observe(time.Since(start).Seconds())

		if err == nil && product != nil {
			line.ProductID = &product.ID
			line.Title = product.Title
			line.UnitPrice = product.Price
			line.Snapshot = &models.ProductSnapshot{
				Title:  product.Title,
				Slug:   product.Slug,
				Images: []string(product.Images),
			}
			return line
		}

		// The reference is dropped so the stored item never points at a
		// nonexistent catalog entry.
		r.logger.Warn("Catalog lookup failed, using client-supplied item data",
			zap.String("product_ref", item.ProductRef),
			zap.Error(err))
	}

	switch {
	case item.UnitPrice != nil:
		line.UnitPrice = *item.UnitPrice
	case item.Snapshot != nil && item.Snapshot.Price != nil:
		line.UnitPrice = *item.Snapshot.Price
	default:
		line.UnitPrice = decimal.Zero
	}

	if line.UnitPrice.IsNegative() {
		r.logger.Warn("Negative unit price clamped to zero",
			zap.String("title", item.Title))
		line.UnitPrice = decimal.Zero
	}

	switch {
	case item.Title != "":
		line.Title = item.Title
	case item.Snapshot != nil && item.Snapshot.Title != "":
		line.Title = item.Snapshot.Title
	default:
		line.Title = "Unknown item"
	}

	// The stored snapshot's price always mirrors the resolved unit price.
	if item.Snapshot != nil {
		snap := *item.Snapshot
		price := line.UnitPrice
		snap.Price = &price
		line.Snapshot = &snap
	}
	return line
}

func parseProductRef(ref string) (int64, bool) {
	if ref == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ToSmallestUnit converts an amount in major currency units to the gateway's
// smallest currency unit, rounding to the nearest integer. This is the only
// place rounding is applied.
func ToSmallestUnit(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
