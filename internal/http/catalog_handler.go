package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogAPI interface {
	Products(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)
	Product(ctx context.Context, id string) (domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id string) (domain.Category, error)
	Brands(ctx context.Context) ([]domain.Brand, error)
	Brand(ctx context.Context, id string) (domain.Brand, error)
}

// CatalogHandler serves product, category and brand pages. Listings are
// fetched per request and never cached.
type CatalogHandler struct {
	api      CatalogAPI
	session  Session
	wishlist WishlistStore
	timeout  time.Duration
}

func NewCatalogHandler(api CatalogAPI, session Session, wishlist WishlistStore, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		api:      api,
		session:  session,
		wishlist: wishlist,
		timeout:  timeout,
	}
}

type homeResponse struct {
	User       string            `json:"user,omitempty"`
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
}

type productDetailsResponse struct {
	Product    domain.Product   `json:"product"`
	InWishlist bool             `json:"inWishlist"`
	Related    []domain.Product `json:"related"`
}

type categoryResponse struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

type brandResponse struct {
	Brand    domain.Brand     `json:"brand"`
	Products []domain.Product `json:"products"`
}

func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.api.Products(ctx, domain.ProductQuery{})
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	categories, err := h.api.Categories(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}

	resp := homeResponse{Products: nonNil(page.Products), Categories: nonNil(categories)}
	if claims, err := h.session.Claims(); err == nil {
		resp.User = claims.Name
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	query := domain.ProductQuery{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
	}
	var ok bool
	if query.Page, ok = positiveInt(w, q.Get("page"), "page"); !ok {
		return
	}
	if query.Limit, ok = positiveInt(w, q.Get("limit"), "limit"); !ok {
		return
	}

	page, err := h.api.Products(ctx, query)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	page.Products = nonNil(page.Products)
	respondJSON(w, http.StatusOK, page)
}

// ProductDetails shows one product together with the other products of its
// category.
func (h *CatalogHandler) ProductDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	product, err := h.api.Product(ctx, id)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}

	if h.wishlist.State() == service.StateEmpty {
		if _, err := h.wishlist.FetchWishlist(ctx); err != nil {
			log.Printf("wishlist fetch error: %v \n", err)
		}
	}

	related := []domain.Product{}
	if product.Category.ID != "" {
		page, err := h.api.Products(ctx, domain.ProductQuery{Category: product.Category.ID})
		if err != nil {
			handleError(w, r, h.session, err)
			return
		}
		for _, p := range page.Products {
			if p.ID != product.ID {
				related = append(related, p)
			}
		}
	}

	respondJSON(w, http.StatusOK, productDetailsResponse{
		Product:    product,
		InWishlist: h.wishlist.Contains(product.ID),
		Related:    related,
	})
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.api.Categories(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(categories))
}

func (h *CatalogHandler) CategoryDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	category, err := h.api.Category(ctx, id)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	page, err := h.api.Products(ctx, domain.ProductQuery{Category: id})
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, categoryResponse{Category: category, Products: nonNil(page.Products)})
}

func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	brands, err := h.api.Brands(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(brands))
}

func (h *CatalogHandler) BrandDetails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	brand, err := h.api.Brand(ctx, id)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	page, err := h.api.Products(ctx, domain.ProductQuery{Brand: id})
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, brandResponse{Brand: brand, Products: nonNil(page.Products)})
}

// NotFound is the catch-all page for signed-in shoppers.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotFound, "not_found", "page not found")
}

func positiveInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
