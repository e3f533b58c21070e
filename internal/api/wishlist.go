package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type wishlistResponse struct {
	Status string           `json:"status"`
	Count  int              `json:"count"`
	Data   []domain.Product `json:"data"`
}

func (c *Client) Wishlist(ctx context.Context, token string) (domain.WishlistSnapshot, error) {
	if err := requireToken(token); err != nil {
		return domain.WishlistSnapshot{}, err
	}

	var resp wishlistResponse
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"wishlist"}, Token: token}, &resp); err != nil {
		return domain.WishlistSnapshot{}, err
	}
	return domain.WishlistSnapshot{Items: resp.Data}, nil
}

func (c *Client) AddToWishlist(ctx context.Context, token, productID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   []string{"wishlist"},
		Token:  token,
		Body:   productIDRequest{ProductID: productID},
	}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, token, productID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: []string{"wishlist", productID}, Token: token}, nil)
}
