package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Session is the session store as seen by the view layer.
type Session interface {
	Token() (string, bool)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	Claims() (session.Claims, error)
}

// RequestIDMiddleware adds a unique request ID to each request and forwards
// it on every API call made while serving it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := api.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession redirects to /login when no token is held. Nothing of the
// protected handler runs in that case.
func RequireSession(sess Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := sess.Token(); !ok {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectIfAuthenticated sends a signed-in shopper away from the login and
// registration pages.
func RedirectIfAuthenticated(sess Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := sess.Token(); ok {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
