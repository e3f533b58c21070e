package service

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/validation"
)

type WishlistAPI interface {
	Wishlist(ctx context.Context, token string) (domain.WishlistSnapshot, error)
	AddToWishlist(ctx context.Context, token, productID string) error
	RemoveFromWishlist(ctx context.Context, token, productID string) error
}

type WishlistService struct {
	api WishlistAPI
	res *resource[domain.WishlistSnapshot]
}

func NewWishlistService(api WishlistAPI, session Session) *WishlistService {
	return &WishlistService{
		api: api,
		res: newResource("wishlist", session, domain.WishlistSnapshot.Clone, api.Wishlist),
	}
}

func (s *WishlistService) FetchWishlist(ctx context.Context) (domain.WishlistSnapshot, error) {
	return s.res.fetch(ctx)
}

func (s *WishlistService) AddToWishlist(ctx context.Context, productID string) error {
	if productID == "" {
		return validation.NewError("productId", "product id is required")
	}
	return s.res.mutate(ctx, "add", func(token string) error {
		return s.api.AddToWishlist(ctx, token, productID)
	})
}

func (s *WishlistService) RemoveFromWishlist(ctx context.Context, productID string) error {
	return s.res.mutate(ctx, "remove", func(token string) error {
		return s.api.RemoveFromWishlist(ctx, token, productID)
	})
}

// Contains reports whether the last fetched wishlist holds the product.
func (s *WishlistService) Contains(productID string) bool {
	return s.Snapshot().Contains(productID)
}

func (s *WishlistService) Snapshot() domain.WishlistSnapshot {
	return s.res.snap.get()
}

func (s *WishlistService) State() State {
	state, _ := s.res.snap.status()
	return state
}

func (s *WishlistService) Err() error {
	_, err := s.res.snap.status()
	return err
}

func (s *WishlistService) Reset() {
	s.res.reset()
}
