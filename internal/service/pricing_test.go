package service

import (
	"context"
	"testing"

	"craftstore/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResolver(products map[int64]*models.Product) *PriceResolver {
	return NewPriceResolver(&fakeProductFinder{products: products})
}

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestResolveCatalogPriceIsAuthoritative(t *testing.T) {
	r := testResolver(map[int64]*models.Product{
		7: {ID: 7, Title: "Name Board", Slug: "name-board", Price: decimal.NewFromInt(500)},
	})

	// Client-supplied price must be ignored for catalog-backed items.
	items, total, err := r.Resolve(context.Background(), []ItemRequest{
		{ProductRef: "7", Quantity: 2, UnitPrice: decPtr(1), Title: "cheap trick"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "Name Board", items[0].Title)
	require.NotNil(t, items[0].ProductID)
	assert.Equal(t, int64(7), *items[0].ProductID)
	require.NotNil(t, items[0].Snapshot)
	assert.Equal(t, "name-board", items[0].Snapshot.Slug)
	assert.True(t, total.Equal(decimal.NewFromInt(1000)))
}

func TestResolveFallbackUsesClientPrice(t *testing.T) {
	r := testResolver(nil)

	items, total, err := r.Resolve(context.Background(), []ItemRequest{
		{Title: "Sticker", UnitPrice: decPtr(50), Quantity: 3},
	})
	require.NoError(t, err)

	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(50)))
	assert.Nil(t, items[0].ProductID)
	assert.True(t, total.Equal(decimal.NewFromInt(150)))
}

func TestResolveUnknownReferenceIsDropped(t *testing.T) {
	r := testResolver(nil)

	items, _, err := r.Resolve(context.Background(), []ItemRequest{
		{ProductRef: "999", Title: "Ghost", UnitPrice: decPtr(10), Quantity: 1},
	})
	require.NoError(t, err)

	// The stored item must never point at a nonexistent catalog entry.
	assert.Nil(t, items[0].ProductID)
	assert.Equal(t, "Ghost", items[0].Title)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
}

func TestResolveSnapshotFallbacks(t *testing.T) {
	r := testResolver(nil)

	snap := &models.ProductSnapshot{Title: "Old Gift Box", Slug: "gift-box", Price: decPtr(499)}
	items, total, err := r.Resolve(context.Background(), []ItemRequest{
		{ProductRef: "not-a-number", Quantity: 1, Snapshot: snap},
	})
	require.NoError(t, err)

	assert.Equal(t, "Old Gift Box", items[0].Title)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(499)))
	assert.Equal(t, snap, items[0].Snapshot)
	assert.True(t, total.Equal(decimal.NewFromInt(499)))
}

func TestResolveSnapshotPriceMatchesResolvedPrice(t *testing.T) {
	r := testResolver(nil)

	// Client price wins over the snapshot price; the stored snapshot must not
	// keep a contradicting price.
	items, _, err := r.Resolve(context.Background(), []ItemRequest{
		{Title: "Sticker", UnitPrice: decPtr(75), Quantity: 1,
			Snapshot: &models.ProductSnapshot{Title: "Sticker", Price: decPtr(499)}},
	})
	require.NoError(t, err)
	require.NotNil(t, items[0].Snapshot)
	require.NotNil(t, items[0].Snapshot.Price)
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(75)))
	assert.True(t, items[0].Snapshot.Price.Equal(decimal.NewFromInt(75)))

	// A clamped negative price propagates into the snapshot too.
	items, _, err = r.Resolve(context.Background(), []ItemRequest{
		{Quantity: 1, Snapshot: &models.ProductSnapshot{Title: "Refund exploit", Price: decPtr(-100)}},
	})
	require.NoError(t, err)
	require.NotNil(t, items[0].Snapshot.Price)
	assert.True(t, items[0].UnitPrice.IsZero())
	assert.True(t, items[0].Snapshot.Price.IsZero())
}

func TestResolvePlaceholdersAndZeroPrice(t *testing.T) {
	r := testResolver(nil)

	items, total, err := r.Resolve(context.Background(), []ItemRequest{
		{Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "Unknown item", items[0].Title)
	assert.True(t, items[0].UnitPrice.IsZero())
	assert.True(t, total.IsZero())
}

func TestResolveQuantityClampedToOne(t *testing.T) {
	r := testResolver(nil)

	for _, qty := range []int{0, -3} {
		items, total, err := r.Resolve(context.Background(), []ItemRequest{
			{Title: "Sticker", UnitPrice: decPtr(50), Quantity: qty},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, items[0].Quantity)
		assert.True(t, total.Equal(decimal.NewFromInt(50)))
	}
}

func TestResolveNegativePriceClampedToZero(t *testing.T) {
	r := testResolver(nil)

	items, _, err := r.Resolve(context.Background(), []ItemRequest{
		{Title: "Refund exploit", UnitPrice: decPtr(-100), Quantity: 1},
	})
	require.NoError(t, err)
	assert.True(t, items[0].UnitPrice.IsZero())
}

func TestResolveMixedItemsTotal(t *testing.T) {
	r := testResolver(map[int64]*models.Product{
		1: {ID: 1, Title: "Name Board", Slug: "name-board", Price: decimal.NewFromInt(500)},
	})

	items, total, err := r.Resolve(context.Background(), []ItemRequest{
		{ProductRef: "1", Quantity: 2},
		{Title: "Sticker", UnitPrice: decPtr(50), Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 500*2 + 50*3
	assert.True(t, total.Equal(decimal.NewFromInt(1150)))

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, total.Equal(sum))
}

func TestResolveEmptyItemsRejected(t *testing.T) {
	r := testResolver(nil)

	_, _, err := r.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestToSmallestUnit(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"12.34", 1234},
		{"12.345", 1235},
		{"1150", 115000},
		{"0.004", 0},
	}

	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.amount)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ToSmallestUnit(d), "amount %s", tc.amount)
	}
}
