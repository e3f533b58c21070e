// Package apitest runs an in-memory stand-in for the remote e-commerce API.
// It follows the real API's routes, headers and response envelopes closely
// enough for the client packages to be exercised end to end in tests.
package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ResetCode is the only reset code the server accepts.
	ResetCode = "123456"

	tokenHeader = "token"
	signingKey  = "apitest-signing-key"
)

type Product struct {
	ID       string
	Title    string
	Price    int
	Category Ref
	Brand    Ref
}

type Ref struct {
	ID   string
	Name string
}

type user struct {
	id       string
	name     string
	email    string
	password string
	phone    string
}

type cartLine struct {
	productID string
	count     int
}

type cart struct {
	id    string
	lines []cartLine
}

// Server is a fake API backed by maps. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu         sync.RWMutex
	products   []Product
	categories []Ref
	brands     []Ref
	users      map[string]*user // email -> user
	tokens     map[string]string
	expired    map[string]bool
	carts      map[string]*cart    // email -> cart
	wishlists  map[string][]string // email -> product ids
	orders     map[string][]map[string]any
	failures   map[string]failure
	calls      []string
}

type failure struct {
	status  int
	message string
}

var (
	Electronics = Ref{ID: "cat-electronics", Name: "Electronics"}
	Fashion     = Ref{ID: "cat-fashion", Name: "Women's Fashion"}
	Samsung     = Ref{ID: "brand-samsung", Name: "Samsung"}
	Defacto     = Ref{ID: "brand-defacto", Name: "DeFacto"}

	Phone   = Product{ID: "p1", Title: "Galaxy A15", Price: 100, Category: Electronics, Brand: Samsung}
	Monitor = Product{ID: "p2", Title: "Curved Monitor", Price: 250, Category: Electronics, Brand: Samsung}
	Scarf   = Product{ID: "p3", Title: "Wool Scarf", Price: 40, Category: Fashion, Brand: Defacto}
)

// New starts a server seeded with three products and registers its Close
// with t.Cleanup.
func New(t testing.TB) *Server {
	s := &Server{
		products:   []Product{Phone, Monitor, Scarf},
		categories: []Ref{Electronics, Fashion},
		brands:     []Ref{Samsung, Defacto},
		users:      make(map[string]*user),
		tokens:     make(map[string]string),
		expired:    make(map[string]bool),
		carts:      make(map[string]*cart),
		wishlists:  make(map[string][]string),
		orders:     make(map[string][]map[string]any),
		failures:   make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root the client should be pointed at.
func (s *Server) BaseURL() url.URL {
	u, _ := url.Parse(s.URL + "/api/v1")
	return *u
}

// AddUser registers a user and returns a valid token for it.
func (s *Server) AddUser(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{id: uuid.NewString(), name: name, email: email, password: password}
	s.users[email] = u
	return s.issueToken(u)
}

// ExpireToken makes every later request with token fail as expired.
func (s *Server) ExpireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired[token] = true
}

// FailNext makes the next request matching method and path (relative to the
// API root, e.g. "/cart") fail with status and message.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Calls returns every request received so far as "METHOD /path".
func (s *Server) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.calls...)
}

// CartOf returns the product ids and counts in the user's cart.
func (s *Server) CartOf(email string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	if c, ok := s.carts[email]; ok {
		for _, l := range c.lines {
			out[l.productID] = l.count
		}
	}
	return out
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", s.listProducts)
		r.Get("/products/{id}", s.getProduct)
		r.Get("/categories", s.listRefs(func() []Ref { return s.categories }))
		r.Get("/categories/{id}", s.getRef(func() []Ref { return s.categories }, "category"))
		r.Get("/brands", s.listRefs(func() []Ref { return s.brands }))
		r.Get("/brands/{id}", s.getRef(func() []Ref { return s.brands }, "brand"))

		r.Post("/auth/signin", s.signIn)
		r.Post("/auth/signup", s.signUp)
		r.Post("/auth/forgotPasswords", s.forgotPassword)
		r.Post("/auth/verifyResetCode", s.verifyResetCode)
		r.Put("/auth/resetPassword", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Put("/users/changeMyPassword", s.changePassword)

			r.Get("/cart", s.getCart)
			r.Post("/cart", s.addToCart)
			r.Put("/cart/{id}", s.updateCartItem)
			r.Delete("/cart/{id}", s.removeCartItem)
			r.Delete("/cart", s.clearCart)

			r.Get("/wishlist", s.getWishlist)
			r.Post("/wishlist", s.addToWishlist)
			r.Delete("/wishlist/{id}", s.removeFromWishlist)

			r.Post("/orders/checkout-session/{cartID}", s.checkoutSession)
			r.Post("/orders/{cartID}", s.cashOrder)
			r.Get("/orders", s.listOrders)
		})
	})
	return r
}

type userKey struct{}

func contextWithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey{}, email)
}

func userFromContext(ctx context.Context) string {
	email, _ := ctx.Value(userKey{}).(string)
	return email
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		key := r.Method + " " + path

		s.mu.Lock()
		s.calls = append(s.calls, key)
		f, fail := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()

		if fail {
			writeFail(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(tokenHeader)
		if token == "" {
			writeFail(w, http.StatusUnauthorized, "You are not logged in. Please login to get access")
			return
		}

		s.mu.RLock()
		email, known := s.tokens[token]
		expired := s.expired[token]
		s.mu.RUnlock()

		switch {
		case expired:
			writeFail(w, http.StatusUnauthorized, "Expired Token. please login again")
		case !known:
			writeFail(w, http.StatusUnauthorized, "Invalid Token. please login again")
		default:
			ctx := r.Context()
			next.ServeHTTP(w, r.WithContext(contextWithUser(ctx, email)))
		}
	})
}

// issueToken must be called with s.mu held.
func (s *Server) issueToken(u *user) string {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   u.id,
		"name": u.name,
		"role": "user",
		"iat":  time.Now().Unix(),
		"jti":  uuid.NewString(),
	}).SignedString([]byte(signingKey))
	s.tokens[token] = u.email
	return token
}

// productByID must be called with s.mu held.
func (s *Server) productByID(id string) (Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func productJSON(p Product) map[string]any {
	return map[string]any{
		"_id":             p.ID,
		"id":              p.ID,
		"title":           p.Title,
		"slug":            strings.ToLower(strings.ReplaceAll(p.Title, " ", "-")),
		"price":           p.Price,
		"imageCover":      "https://images.example.com/" + p.ID + ".jpeg",
		"quantity":        100,
		"ratingsAverage":  4.5,
		"ratingsQuantity": 12,
		"category":        refJSON(p.Category),
		"brand":           refJSON(p.Brand),
	}
}

func refJSON(r Ref) map[string]any {
	return map[string]any{
		"_id":  r.ID,
		"name": r.Name,
		"slug": strings.ToLower(strings.ReplaceAll(r.Name, " ", "-")),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"statusMsg": "fail", "message": message})
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func metadata() map[string]any {
	return map[string]any{"currentPage": 1, "numberOfPages": 1, "limit": 40}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	brand := r.URL.Query().Get("brand")

	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make([]map[string]any, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && p.Category.ID != category {
			continue
		}
		if brand != "" && p.Brand.ID != brand {
			continue
		}
		data = append(data, productJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": len(data), "metadata": metadata(), "data": data})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.productByID(chi.URLParam(r, "id"))
	if !ok {
		writeFail(w, http.StatusNotFound, "No product for this id "+chi.URLParam(r, "id"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": productJSON(p)})
}

func (s *Server) listRefs(refs func() []Ref) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		data := make([]map[string]any, 0)
		for _, ref := range refs() {
			data = append(data, refJSON(ref))
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": len(data), "metadata": metadata(), "data": data})
	}
}

func (s *Server) getRef(refs func() []Ref, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, ref := range refs() {
			if ref.ID == id {
				writeJSON(w, http.StatusOK, map[string]any{"data": refJSON(ref)})
				return
			}
		}
		writeFail(w, http.StatusNotFound, fmt.Sprintf("No %s for this id %s", kind, id))
	}
}

func authJSON(u *user, token string) map[string]any {
	return map[string]any{
		"message": "success",
		"user":    map[string]any{"name": u.name, "email": u.email, "role": "user"},
		"token":   token,
	}
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &req) {
		writeFail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		writeFail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	writeJSON(w, http.StatusOK, authJSON(u, s.issueToken(u)))
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		RePassword string `json:"rePassword"`
		Phone      string `json:"phone"`
	}
	if !decode(r, &req) {
		writeFail(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Email]; exists {
		writeFail(w, http.StatusConflict, "Account Already Exists")
		return
	}
	u := &user{id: uuid.NewString(), name: req.Name, email: req.Email, password: req.Password, phone: req.Phone}
	s.users[req.Email] = u
	writeJSON(w, http.StatusCreated, authJSON(u, s.issueToken(u)))
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	_ = decode(r, &req)

	s.mu.RLock()
	_, ok := s.users[req.Email]
	s.mu.RUnlock()
	if !ok {
		writeFail(w, http.StatusNotFound, "There is no user registered with this email address "+req.Email)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statusMsg": "success", "message": "Reset code sent to your email"})
}

func (s *Server) verifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetCode string `json:"resetCode"`
	}
	_ = decode(r, &req)
	if req.ResetCode != ResetCode {
		writeFail(w, http.StatusBadRequest, "Reset code is invalid or has expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "Success"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	_ = decode(r, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Email]
	if !ok {
		writeFail(w, http.StatusNotFound, "There is no user with email "+req.Email)
		return
	}
	u.password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]any{"token": s.issueToken(u)})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		Password        string `json:"password"`
		RePassword      string `json:"rePassword"`
	}
	_ = decode(r, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userFromContext(r.Context())]
	if u.password != req.CurrentPassword {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "fail",
			"errors": map[string]any{
				"value": req.CurrentPassword, "msg": "Incorrect current password",
				"param": "currentPassword", "location": "body",
			},
		})
		return
	}
	u.password = req.Password
	writeJSON(w, http.StatusOK, authJSON(u, s.issueToken(u)))
}

// cartJSON must be called with s.mu held.
func (s *Server) cartJSON(c *cart, populate bool) map[string]any {
	products := make([]map[string]any, 0, len(c.lines))
	total, count := 0, 0
	for _, l := range c.lines {
		p, _ := s.productByID(l.productID)
		var product any = p.ID
		if populate {
			product = productJSON(p)
		}
		products = append(products, map[string]any{
			"count": l.count, "_id": "line-" + p.ID, "product": product, "price": p.Price,
		})
		total += l.count * p.Price
		count++
	}
	return map[string]any{
		"status":         "success",
		"numOfCartItems": count,
		"cartId":         c.id,
		"data": map[string]any{
			"_id":            c.id,
			"products":       products,
			"totalCartPrice": total,
		},
	}
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	email := userFromContext(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[email]
	if !ok {
		writeFail(w, http.StatusNotFound, "No cart exist for this user: "+s.users[email].id)
		return
	}
	writeJSON(w, http.StatusOK, s.cartJSON(c, true))
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	_ = decode(r, &req)
	email := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productByID(req.ProductID); !ok {
		writeFail(w, http.StatusNotFound, "No product for this id "+req.ProductID)
		return
	}
	c, ok := s.carts[email]
	if !ok {
		c = &cart{id: uuid.NewString()}
		s.carts[email] = c
	}
	found := false
	for i := range c.lines {
		if c.lines[i].productID == req.ProductID {
			c.lines[i].count++
			found = true
		}
	}
	if !found {
		c.lines = append(c.lines, cartLine{productID: req.ProductID, count: 1})
	}
	body := s.cartJSON(c, false)
	body["message"] = "Product added successfully to your cart"
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	_ = decode(r, &req)
	id := chi.URLParam(r, "id")
	email := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[email]
	if !ok {
		writeFail(w, http.StatusNotFound, "No cart exist for this user")
		return
	}
	for i := range c.lines {
		if c.lines[i].productID == id {
			c.lines[i].count = req.Count
			writeJSON(w, http.StatusOK, s.cartJSON(c, true))
			return
		}
	}
	writeFail(w, http.StatusNotFound, "No product in cart for this id "+id)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	email := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[email]
	if !ok {
		writeFail(w, http.StatusNotFound, "No cart exist for this user")
		return
	}
	for i, l := range c.lines {
		if l.productID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, s.cartJSON(c, true))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delete(s.carts, userFromContext(r.Context()))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"message": "success"})
}

func (s *Server) wishlistIDs(email string) []string {
	return append([]string{}, s.wishlists[email]...)
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) {
	email := userFromContext(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	data := make([]map[string]any, 0)
	for _, id := range s.wishlists[email] {
		p, _ := s.productByID(id)
		data = append(data, productJSON(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "count": len(data), "data": data})
}

func (s *Server) addToWishlist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	_ = decode(r, &req)
	email := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productByID(req.ProductID); !ok {
		writeFail(w, http.StatusNotFound, "No product for this id "+req.ProductID)
		return
	}
	for _, id := range s.wishlists[email] {
		if id == req.ProductID {
			writeJSON(w, http.StatusOK, map[string]any{"status": "success", "data": s.wishlistIDs(email)})
			return
		}
	}
	s.wishlists[email] = append(s.wishlists[email], req.ProductID)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success", "message": "Product added successfully to your wishlist", "data": s.wishlistIDs(email),
	})
}

func (s *Server) removeFromWishlist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	email := userFromContext(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.wishlists[email]
	for i, existing := range ids {
		if existing == id {
			s.wishlists[email] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success", "message": "Product removed successfully from your wishlist", "data": s.wishlistIDs(email),
	})
}

type shippingBody struct {
	ShippingAddress struct {
		Details string `json:"details"`
		Phone   string `json:"phone"`
		City    string `json:"city"`
	} `json:"shippingAddress"`
}

// userCart must be called with s.mu held.
func (s *Server) userCart(w http.ResponseWriter, r *http.Request) (string, *cart, bool) {
	email := userFromContext(r.Context())
	c, ok := s.carts[email]
	if !ok || c.id != chi.URLParam(r, "cartID") {
		writeFail(w, http.StatusNotFound, "There is no such cart with id "+chi.URLParam(r, "cartID"))
		return "", nil, false
	}
	return email, c, true
}

func (s *Server) cashOrder(w http.ResponseWriter, r *http.Request) {
	var req shippingBody
	_ = decode(r, &req)

	s.mu.Lock()
	defer s.mu.Unlock()
	email, c, ok := s.userCart(w, r)
	if !ok {
		return
	}

	cartBody := s.cartJSON(c, true)
	data := cartBody["data"].(map[string]any)
	order := map[string]any{
		"_id":               uuid.NewString(),
		"shippingAddress":   req.ShippingAddress,
		"taxPrice":          0,
		"shippingPrice":     0,
		"totalOrderPrice":   data["totalCartPrice"],
		"paymentMethodType": "cash",
		"isPaid":            false,
		"isDelivered":       false,
		"cartItems":         data["products"],
		"createdAt":         time.Now().UTC().Format(time.RFC3339),
	}
	s.orders[email] = append(s.orders[email], order)
	delete(s.carts, email)
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "data": order})
}

func (s *Server) checkoutSession(w http.ResponseWriter, r *http.Request) {
	var req shippingBody
	_ = decode(r, &req)
	returnURL := r.URL.Query().Get("url")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, _, ok := s.userCart(w, r); !ok {
		return
	}
	if returnURL == "" {
		writeFail(w, http.StatusBadRequest, "success url is required")
		return
	}
	id := "cs_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"session": map[string]any{
			"id":          id,
			"url":         "https://checkout.stripe.com/c/pay/" + id,
			"success_url": returnURL + "/allorders",
		},
	})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	email := userFromContext(r.Context())
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := append([]map[string]any{}, s.orders[email]...)
	writeJSON(w, http.StatusOK, map[string]any{"results": len(orders), "metadata": metadata(), "data": orders})
}
