package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

type CartAPI interface {
	Cart(ctx context.Context, token string) (domain.CartSnapshot, error)
	AddToCart(ctx context.Context, token, productID string) error
	UpdateCartItem(ctx context.Context, token, productID string, count int) error
	RemoveCartItem(ctx context.Context, token, productID string) error
	ClearCart(ctx context.Context, token string) error
}

// CartService owns the shopper's cart snapshot.
type CartService struct {
	api CartAPI
	res *resource[domain.CartSnapshot]
}

func NewCartService(api CartAPI, session Session) *CartService {
	return &CartService{
		api: api,
		res: newResource("cart", session, domain.CartSnapshot.Clone, api.Cart),
	}
}

// FetchCart replaces the snapshot with the cart held by the API.
func (s *CartService) FetchCart(ctx context.Context) (domain.CartSnapshot, error) {
	return s.res.fetch(ctx)
}

func (s *CartService) AddItem(ctx context.Context, productID string) error {
	if productID == "" {
		return validation.NewError("productId", "product id is required")
	}
	return s.res.mutate(ctx, "add item", func(token string) error {
		return s.api.AddToCart(ctx, token, productID)
	})
}

// UpdateQuantity sets the count of a cart line. Counts below 1 are rejected
// without calling the API; use RemoveItem to drop a line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID string, count int) error {
	if count < 1 {
		return validation.NewError("count", "Quantity must be at least 1")
	}
	return s.res.mutate(ctx, "update quantity", func(token string) error {
		return s.api.UpdateCartItem(ctx, token, productID, count)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, productID string) error {
	return s.res.mutate(ctx, "remove item", func(token string) error {
		return s.api.RemoveCartItem(ctx, token, productID)
	})
}

func (s *CartService) ClearCart(ctx context.Context) error {
	return s.res.mutate(ctx, "clear", func(token string) error {
		return s.api.ClearCart(ctx, token)
	})
}

// Snapshot returns a copy of the last fetched cart.
func (s *CartService) Snapshot() domain.CartSnapshot {
	return s.res.snap.get()
}

func (s *CartService) State() State {
	state, _ := s.res.snap.status()
	return state
}

// Err returns the error of the last failed request, if the snapshot is
// not up to date.
func (s *CartService) Err() error {
	_, err := s.res.snap.status()
	return err
}

// CartID is the server id of the current cart, empty when there is none.
func (s *CartService) CartID() string {
	return s.Snapshot().CartID
}

// Reset drops the snapshot. Fetches still in flight are discarded.
func (s *CartService) Reset() {
	s.res.reset()
}
