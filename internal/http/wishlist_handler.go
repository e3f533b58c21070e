package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type WishlistStore interface {
	FetchWishlist(ctx context.Context) (domain.WishlistSnapshot, error)
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
	Snapshot() domain.WishlistSnapshot
	Contains(productID string) bool
	State() service.State
}

type WishlistHandler struct {
	wishlist WishlistStore
	session  Session
	timeout  time.Duration
}

func NewWishlistHandler(wishlist WishlistStore, session Session, timeout time.Duration) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		session:  session,
		timeout:  timeout,
	}
}

type wishlistView struct {
	Count    int              `json:"count"`
	Products []domain.Product `json:"products"`
	Message  string           `json:"message,omitempty"`
}

func newWishlistView(snap domain.WishlistSnapshot, message string) wishlistView {
	return wishlistView{
		Count:    len(snap.Items),
		Products: nonNil(snap.Items),
		Message:  message,
	}
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.wishlist.FetchWishlist(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newWishlistView(snap, ""))
}

func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.wishlist.AddToWishlist(ctx, req.ProductID); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusCreated, newWishlistView(h.wishlist.Snapshot(), "Product added successfully to your wishlist"))
}

func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.wishlist.RemoveFromWishlist(ctx, chi.URLParam(r, "productID")); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, newWishlistView(h.wishlist.Snapshot(), "Product removed from your wishlist"))
}
