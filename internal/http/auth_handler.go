package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type AuthAPI interface {
	SignIn(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error)
	SignUp(ctx context.Context, reg domain.Registration) (domain.AuthResult, error)
	ForgotPassword(ctx context.Context, req domain.ForgotPassword) (string, error)
	VerifyResetCode(ctx context.Context, code domain.ResetCode) error
	ResetPassword(ctx context.Context, req domain.PasswordReset) (domain.AuthResult, error)
	ChangePassword(ctx context.Context, token string, req domain.PasswordChange) (domain.AuthResult, error)
}

type AuthHandler struct {
	api     AuthAPI
	session Session
	timeout time.Duration
}

func NewAuthHandler(api AuthAPI, session Session, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		api:     api,
		session: session,
		timeout: timeout,
	}
}

type authResponse struct {
	User domain.User `json:"user"`
}

// View answers GET on a form page with the name of the form to render.
func View(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"view": name})
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Credentials
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	res, err := h.api.SignIn(ctx, req)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	h.startSession(w, r, res)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.Registration
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	res, err := h.api.SignUp(ctx, req)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	h.startSession(w, r, res)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, res domain.AuthResult) {
	if res.Token == "" {
		respondError(w, http.StatusBadGateway, "bad_gateway", "no token issued")
		return
	}
	if err := h.session.SetToken(r.Context(), res.Token); err != nil {
		// the in-memory session is live even if persisting failed
		log.Printf("session persist error: %v \n", err)
	}
	redirect(w, "/", http.StatusSeeOther, authResponse{User: res.User})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.ForgotPassword
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	msg, err := h.api.ForgotPassword(ctx, req)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	if msg == "" {
		msg = "Password reset code has been sent to your email."
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *AuthHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.ResetCode
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	if err := h.api.VerifyResetCode(ctx, req); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Reset code verified successfully!"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PasswordReset
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	if _, err := h.api.ResetPassword(ctx, req); err != nil {
		handleError(w, r, h.session, err)
		return
	}
	redirect(w, "/login", http.StatusSeeOther, messageResponse{Message: "Password has been successfully reset."})
}

// UpdatePassword changes the password of the signed-in shopper. The API
// issues a new token, which replaces the current one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req domain.PasswordChange
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	token, _ := h.session.Token()
	res, err := h.api.ChangePassword(ctx, token, req)
	if err != nil {
		handleError(w, r, h.session, err)
		return
	}
	if res.Token != "" {
		if err := h.session.SetToken(r.Context(), res.Token); err != nil {
			log.Printf("session persist error: %v \n", err)
		}
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Password has been updated successfully."})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.ClearToken(r.Context()); err != nil {
		log.Printf("session clear error: %v \n", err)
	}
	redirect(w, "/login", http.StatusSeeOther, messageResponse{Message: "Signed out."})
}
