package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartStore interface {
	FetchCart(ctx context.Context) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, count int) error
	RemoveItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
	Snapshot() domain.CartSnapshot
	State() service.State
	Reset()
}

type CartHandler struct {
	cart    CartStore
	session Session
	timeout time.Duration
}

func NewCartHandler(cart CartStore, session Session, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    cart,
		session: session,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"productId"`
}

type UpdateQuantityRequestDTO struct {
	Count int `json:"count"`
}

type cartView struct {
	CartID     string            `json:"cartId,omitempty"`
	Items      []domain.CartItem `json:"items"`
	ItemCount  int               `json:"itemCount"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Message    string            `json:"message,omitempty"`
}

func newCartView(snap domain.CartSnapshot, message string) cartView {
	return cartView{
		CartID:     snap.CartID,
		Items:      nonNil(snap.Items),
		ItemCount:  snap.ItemCount,
		TotalPrice: snap.TotalPrice,
		Message:    message,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.cart.FetchCart(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(snap, ""))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.cart.AddItem(ctx, req.ProductID); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusCreated, newCartView(h.cart.Snapshot(), "Product added successfully to your cart"))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "productID")

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.cart.UpdateQuantity(ctx, productID, req.Count); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(h.cart.Snapshot(), ""))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "productID")
	if err := h.cart.RemoveItem(ctx, productID); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(h.cart.Snapshot(), "Product removed from your cart"))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.ClearCart(ctx); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(h.cart.Snapshot(), "Cart cleared"))
}
