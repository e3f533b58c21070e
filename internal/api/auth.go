package api

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type messageResponse struct {
	StatusMsg string `json:"statusMsg"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func (c *Client) SignIn(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"auth", "signin"}, Body: creds}, &res)
	return res, err
}

func (c *Client) SignUp(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"auth", "signup"}, Body: reg}, &res)
	return res, err
}

// ForgotPassword asks the API to email a reset code and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, req domain.ForgotPassword) (string, error) {
	var res messageResponse
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"auth", "forgotPasswords"}, Body: req}, &res)
	return res.Message, err
}

func (c *Client) VerifyResetCode(ctx context.Context, code domain.ResetCode) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"auth", "verifyResetCode"}, Body: code}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req domain.PasswordReset) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.Do(ctx, Request{Method: http.MethodPut, Path: []string{"auth", "resetPassword"}, Body: req}, &res)
	return res, err
}

func (c *Client) ChangePassword(ctx context.Context, token string, req domain.PasswordChange) (domain.AuthResult, error) {
	if err := requireToken(token); err != nil {
		return domain.AuthResult{}, err
	}
	var res domain.AuthResult
	err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   []string{"users", "changeMyPassword"},
		Token:  token,
		Body:   req,
	}, &res)
	return res, err
}
