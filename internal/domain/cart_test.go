package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewCartSnapshot_ItemCountIsQuantitySum(t *testing.T) {
	items := []CartItem{
		{Product: Product{ID: "p1"}, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		{Product: Product{ID: "p2"}, Quantity: 3, UnitPrice: decimal.NewFromInt(40)},
	}

	snap := NewCartSnapshot("c1", items, decimal.NewFromInt(320))

	assert.Equal(t, "c1", snap.CartID)
	assert.Equal(t, 5, snap.ItemCount)
	assert.True(t, snap.TotalPrice.Equal(decimal.NewFromInt(320)))
	assert.False(t, snap.IsEmpty())
}

func TestNewCartSnapshot_Empty(t *testing.T) {
	snap := NewCartSnapshot("", nil, decimal.Zero)

	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 0, snap.ItemCount)
}

func TestCartSnapshot_CloneDoesNotShareItems(t *testing.T) {
	snap := NewCartSnapshot("c1", []CartItem{{Product: Product{ID: "p1"}, Quantity: 1}}, decimal.NewFromInt(10))

	clone := snap.Clone()
	clone.Items[0].Quantity = 9

	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestWishlistSnapshot(t *testing.T) {
	w := WishlistSnapshot{Items: []Product{{ID: "p1"}, {ID: "p3"}}}

	assert.True(t, w.Contains("p3"))
	assert.False(t, w.Contains("p2"))

	clone := w.Clone()
	clone.Items[0].ID = "changed"
	assert.Equal(t, "p1", w.Items[0].ID)

	assert.True(t, WishlistSnapshot{}.IsEmpty())
}
