package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type cartResponse struct {
	Status         string `json:"status"`
	NumOfCartItems int    `json:"numOfCartItems"`
	CartID         string `json:"cartId"`
	Data           struct {
		ID             string            `json:"_id"`
		Products       []domain.CartItem `json:"products"`
		TotalCartPrice decimal.Decimal   `json:"totalCartPrice"`
	} `json:"data"`
}

type productIDRequest struct {
	ProductID string `json:"productId"`
}

type countRequest struct {
	Count int `json:"count"`
}

// Cart fetches the shopper's cart. A 404 (no cart exists yet, or it was
// cleared) is an empty snapshot, not an error.
func (c *Client) Cart(ctx context.Context, token string) (domain.CartSnapshot, error) {
	if err := requireToken(token); err != nil {
		return domain.CartSnapshot{}, err
	}

	var resp cartResponse
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"cart"}, Token: token}, &resp)
	if IsNotFound(err) {
		return domain.NewCartSnapshot("", nil, decimal.Zero), nil
	}
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	cartID := resp.CartID
	if cartID == "" {
		cartID = resp.Data.ID
	}
	return domain.NewCartSnapshot(cartID, resp.Data.Products, resp.Data.TotalCartPrice), nil
}

// AddToCart adds one unit of the product. The response body is discarded;
// callers re-fetch the cart.
func (c *Client) AddToCart(ctx context.Context, token, productID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   []string{"cart"},
		Token:  token,
		Body:   productIDRequest{ProductID: productID},
	}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, token, productID string, count int) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   []string{"cart", productID},
		Token:  token,
		Body:   countRequest{Count: count},
	}, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, token, productID string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: []string{"cart", productID}, Token: token}, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: []string{"cart"}, Token: token}, nil)
}
