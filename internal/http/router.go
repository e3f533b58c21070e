package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type Handlers struct {
	Auth     *AuthHandler
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Orders   *OrdersHandler
}

// NewRouter wires the storefront pages. Everything except the sign-in,
// registration and password recovery pages requires a session.
func NewRouter(cfg RouterConfig, sess Session, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{"Location", requestIDHeader},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Sign-in pages
	r.Group(func(r chi.Router) {
		r.Use(RedirectIfAuthenticated(sess))
		r.Get("/login", View("login"))
		r.Post("/login", h.Auth.Login)
		r.Get("/register", View("register"))
		r.Post("/register", h.Auth.Register)
	})

	// Password recovery
	r.Post("/forgot", h.Auth.ForgotPassword)
	r.Post("/verify", h.Auth.VerifyResetCode)
	r.Post("/reset", h.Auth.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(sess))

		r.Get("/", h.Catalog.Home)
		r.Get("/products", h.Catalog.Products)
		r.Get("/products/{id}", h.Catalog.ProductDetails)
		r.Get("/categories", h.Catalog.Categories)
		r.Get("/categories/{id}", h.Catalog.CategoryDetails)
		r.Get("/brands", h.Catalog.Brands)
		r.Get("/brands/{id}", h.Catalog.BrandDetails)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Delete("/", h.Cart.ClearCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{productID}", h.Cart.UpdateQuantity)
			r.Delete("/items/{productID}", h.Cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.Wishlist.GetWishlist)
			r.Post("/", h.Wishlist.AddItem)
			r.Delete("/{productID}", h.Wishlist.RemoveItem)
		})

		r.Post("/payment", h.Orders.Payment)
		r.Get("/allorders", h.Orders.AllOrders)
		r.Post("/update", h.Auth.UpdatePassword)
		r.Post("/logout", h.Auth.Logout)
	})

	r.NotFound(RequireSession(sess)(http.HandlerFunc(NotFound)).ServeHTTP)

	return r
}
