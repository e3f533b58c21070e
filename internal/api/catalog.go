package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type categoriesResponse struct {
	Results    int                 `json:"results"`
	Metadata   domain.PageMetadata `json:"metadata"`
	Categories []domain.Category   `json:"data"`
}

type brandsResponse struct {
	Results  int                 `json:"results"`
	Metadata domain.PageMetadata `json:"metadata"`
	Brands   []domain.Brand      `json:"data"`
}

type dataResponse[T any] struct {
	Data T `json:"data"`
}

func (c *Client) Products(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Brand != "" {
		query.Set("brand", q.Brand)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var page domain.ProductPage
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"products"}, Query: query}, &page)
	return page, err
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var resp dataResponse[domain.Product]
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"products", id}}, &resp)
	return resp.Data, err
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var resp categoriesResponse
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"categories"}}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Category(ctx context.Context, id string) (domain.Category, error) {
	var resp dataResponse[domain.Category]
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"categories", id}}, &resp)
	return resp.Data, err
}

func (c *Client) Brands(ctx context.Context) ([]domain.Brand, error) {
	var resp brandsResponse
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"brands"}}, &resp); err != nil {
		return nil, err
	}
	return resp.Brands, nil
}

func (c *Client) Brand(ctx context.Context, id string) (domain.Brand, error) {
	var resp dataResponse[domain.Brand]
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: []string{"brands", id}}, &resp)
	return resp.Data, err
}
