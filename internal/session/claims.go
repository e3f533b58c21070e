package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSession = errors.New("no active session")

// Claims is the shopper identity embedded in the token issued at sign-in.
type Claims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Claims decodes the token payload for display. The signature is not
// verified and the expiry is not checked; the API remains the only judge of
// whether the token is valid.
func (s *Store) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, ErrNoSession
	}

	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("decode session token: %w", err)
	}
	return claims, nil
}
