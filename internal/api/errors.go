package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ExpiredTokenMessage is the message the API sends for an expired token. It
// is kept as a fallback; a 401 on an authenticated request is the primary
// signal.
const ExpiredTokenMessage = "Expired Token. please login again"

var (
	// ErrSessionExpired matches any APIError reporting that the session
	// token is no longer accepted.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoToken is returned by endpoints that require a session when called
	// without one. No request is issued.
	ErrNoToken = errors.New("missing session token")
)

// ConnectivityError means no response was received from the API.
type ConnectivityError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string

	authenticated bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// SessionExpired reports whether the API rejected the session token.
func (e *APIError) SessionExpired() bool {
	if e.Message == ExpiredTokenMessage {
		return true
	}
	return e.authenticated && e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) Is(target error) bool {
	return target == ErrSessionExpired && e.SessionExpired()
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type errorBody struct {
	StatusMsg string `json:"statusMsg"`
	Message   string `json:"message"`
	Errors    *struct {
		Msg   string `json:"msg"`
		Param string `json:"param"`
	} `json:"errors"`
}

func newAPIError(statusCode int, body []byte, authenticated bool) *APIError {
	apiErr := &APIError{
		StatusCode:    statusCode,
		authenticated: authenticated,
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Errors != nil && eb.Errors.Msg != "" && (eb.Message == "" || eb.Message == "fail"):
			apiErr.Message = eb.Errors.Msg
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.StatusMsg != "":
			apiErr.Message = eb.StatusMsg
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}

	return apiErr
}
