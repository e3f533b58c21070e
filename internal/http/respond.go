package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

const noResponseMessage = "No response from server. Check your connection."

func init() {
	// prices in views are JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse is the body of every failed request. It is a transient
// notification for the shopper, never a page.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// redirect sends the shopper to location with a JSON body describing why.
func redirect(w http.ResponseWriter, location string, status int, body interface{}) {
	w.Header().Set("Location", location)
	respondJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// validate runs the form checks for v and writes a 400 when they fail.
func validate(w http.ResponseWriter, v interface{}) bool {
	if err := validation.Struct(v); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: vErr.Fields,
		})
		return
	}
	log.Printf("validation error: %v \n", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// handleError turns an error from the api or service layers into a
// response. A rejected session is cleared and the shopper is sent to /login.
func handleError(w http.ResponseWriter, r *http.Request, sess Session, err error) {
	var (
		vErr    *validation.Error
		apiErr  *api.APIError
		connErr *api.ConnectivityError
	)

	switch {
	case errors.As(err, &vErr):
		writeValidationError(w, err)

	case errors.Is(err, api.ErrSessionExpired):
		if errClear := sess.ClearToken(context.WithoutCancel(r.Context())); errClear != nil {
			log.Printf("session clear error: %v \n", errClear)
		}
		redirect(w, "/login", http.StatusFound, ErrorResponse{
			Error: "Your session has expired. Please log in again.",
			Code:  "session_expired",
		})

	case errors.Is(err, service.ErrNotAuthenticated), errors.Is(err, api.ErrNoToken):
		redirect(w, "/login", http.StatusFound, ErrorResponse{
			Error: "Please log in to continue.",
			Code:  "unauthenticated",
		})

	case errors.As(err, &connErr):
		log.Printf("api connectivity error: %v \n", err)
		respondError(w, http.StatusServiceUnavailable, "no_response", noResponseMessage)

	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= http.StatusInternalServerError {
			log.Printf("api server error: %v \n", err)
			respondError(w, http.StatusBadGateway, "bad_gateway", apiErr.Message)
			return
		}
		respondError(w, apiErr.StatusCode, apiCode(apiErr.StatusCode), apiErr.Message)

	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")

	default:
		log.Printf("request error: %v \n", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func apiCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusTooManyRequests:
		return "rate_limit_exceeded"
	default:
		return "api_error"
	}
}
