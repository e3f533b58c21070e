package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
)

type OrdersAPI interface {
	CreateCashOrder(ctx context.Context, token, cartID string, addr domain.ShippingAddress) (domain.Order, error)
	CreateCheckoutSession(ctx context.Context, token, cartID string, addr domain.ShippingAddress, returnURL string) (domain.CheckoutSession, error)
	Orders(ctx context.Context, token string) ([]domain.Order, error)
}

type OrdersHandler struct {
	api       OrdersAPI
	cart      CartStore
	session   Session
	returnURL string
	timeout   time.Duration
}

func NewOrdersHandler(api OrdersAPI, cart CartStore, session Session, returnURL string, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		api:       api,
		cart:      cart,
		session:   session,
		returnURL: returnURL,
		timeout:   timeout,
	}
}

const (
	paymentCash   = "cash"
	paymentOnline = "online"
)

type PaymentRequestDTO struct {
	Type            string                 `json:"type"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type cashPaymentResponse struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

type onlinePaymentResponse struct {
	URL string `json:"url"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// Payment checks out the current cart. Cash orders land on /allorders;
// online payment is handed to the hosted checkout page. The cart is cleared
// after either succeeds.
func (h *OrdersHandler) Payment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Type != paymentCash && req.Type != paymentOnline {
		respondError(w, http.StatusBadRequest, "invalid_payment_type", "payment type must be cash or online")
		return
	}
	if !validate(w, req.ShippingAddress) {
		return
	}

	token, ok := h.session.Token()
	if !ok {
		handleError(w, r, h.session, service.ErrNotAuthenticated)
		return
	}

	cartID, err := h.cartID(ctx)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	if cartID == "" {
		redirect(w, "/cart", http.StatusFound, ErrorResponse{Error: "Your cart is empty", Code: "cart_empty"})
		return
	}

	if req.Type == paymentCash {
		order, err := h.api.CreateCashOrder(ctx, token, cartID, req.ShippingAddress)
		if err != nil {
			handleError(w, r, h.session, err)
			return
		}
		h.clearCart(ctx)
		redirect(w, "/allorders", http.StatusSeeOther, cashPaymentResponse{
			Message: "Payment completed successfully!",
			Order:   order,
		})
		return
	}

	checkout, err := h.api.CreateCheckoutSession(ctx, token, cartID, req.ShippingAddress, h.returnURL)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	h.clearCart(ctx)
	redirect(w, checkout.URL, http.StatusSeeOther, onlinePaymentResponse{URL: checkout.URL})
}

// cartID returns the id of the shopper's cart, fetching it when the
// snapshot is not current.
func (h *OrdersHandler) cartID(ctx context.Context) (string, error) {
	if h.cart.State() == service.StateReady {
		return h.cart.Snapshot().CartID, nil
	}
	snap, err := h.cart.FetchCart(ctx)
	if err != nil {
		return "", err
	}
	return snap.CartID, nil
}

func (h *OrdersHandler) clearCart(ctx context.Context) {
	if err := h.cart.ClearCart(ctx); err != nil {
		log.Printf("cart clear after payment error: %v \n", err)
		h.cart.Reset()
	}
}

func (h *OrdersHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	token, ok := h.session.Token()
	if !ok {
		handleError(w, r, h.session, service.ErrNotAuthenticated)
		return
	}

	orders, err := h.api.Orders(ctx, token)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, ordersResponse{Orders: nonNil(orders)})
}
