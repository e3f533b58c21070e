package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type shippingRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type orderResponse struct {
	Status string       `json:"status"`
	Data   domain.Order `json:"data"`
}

type checkoutSessionResponse struct {
	Status  string                 `json:"status"`
	Session domain.CheckoutSession `json:"session"`
}

// CreateCashOrder places a cash-on-delivery order for the cart.
func (c *Client) CreateCashOrder(ctx context.Context, token, cartID string, addr domain.ShippingAddress) (domain.Order, error) {
	if err := requireToken(token); err != nil {
		return domain.Order{}, err
	}

	var resp orderResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   []string{"orders", cartID},
		Token:  token,
		Body:   shippingRequest{ShippingAddress: addr},
	}, &resp)
	return resp.Data, err
}

// CreateCheckoutSession opens a hosted payment session; the shopper is sent
// back to returnURL once payment ends.
func (c *Client) CreateCheckoutSession(ctx context.Context, token, cartID string, addr domain.ShippingAddress, returnURL string) (domain.CheckoutSession, error) {
	if err := requireToken(token); err != nil {
		return domain.CheckoutSession{}, err
	}

	var resp checkoutSessionResponse
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   []string{"orders", "checkout-session", cartID},
		Query:  url.Values{"url": []string{returnURL}},
		Token:  token,
		Body:   shippingRequest{ShippingAddress: addr},
	}, &resp)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if resp.Session.URL == "" {
		return domain.CheckoutSession{}, fmt.Errorf("checkout session for cart %s has no url", cartID)
	}
	return resp.Session, nil
}

// Orders lists the shopper's orders. The endpoint answers either with a bare
// array or with the usual {"data": [...]} envelope.
func (c *Client) Orders(ctx context.Context, token string) ([]domain.Order, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"orders"}, Token: token}, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []domain.Order{}, nil
	}

	var orders []domain.Order
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
	} else {
		var resp dataResponse[[]domain.Order]
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		orders = resp.Data
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
