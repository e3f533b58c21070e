package domain

import "github.com/shopspring/decimal"

type CartItem struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"count"`
	UnitPrice decimal.Decimal `json:"price"`
}

// CartSnapshot is the cart as last fetched from the API. It is replaced in
// full on every fetch and never patched.
type CartSnapshot struct {
	CartID     string          `json:"cartId"`
	Items      []CartItem      `json:"products"`
	TotalPrice decimal.Decimal `json:"totalCartPrice"`
	ItemCount  int             `json:"numOfCartItems"`
}

// NewCartSnapshot builds a snapshot from a fetched item list. ItemCount is the
// sum of item quantities; totalPrice is taken as reported by the server.
func NewCartSnapshot(cartID string, items []CartItem, totalPrice decimal.Decimal) CartSnapshot {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return CartSnapshot{
		CartID:     cartID,
		Items:      items,
		TotalPrice: totalPrice,
		ItemCount:  count,
	}
}

func (c CartSnapshot) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c CartSnapshot) Clone() CartSnapshot {
	if c.Items != nil {
		items := make([]CartItem, len(c.Items))
		copy(items, c.Items)
		c.Items = items
	}
	return c
}
