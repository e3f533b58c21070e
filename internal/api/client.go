package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://ecommerce.routemisr.com/api/v1"

	tokenHeader     = "token"
	requestIDHeader = "X-Request-ID"
)

var errServerFailure = errors.New("server failure")

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote e-commerce API. Failed requests are never
// retried.
type Client struct {
	client  httpClient
	baseURL url.URL
	breaker *gobreaker.CircuitBreaker[*response]
}

type Option func(*Client)

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(settings)
	}
}

func NewClient(client httpClient, baseURL url.URL, opts ...Option) *Client {
	c := &Client{
		client:  client,
		baseURL: baseURL,
		breaker: newBreaker(gobreaker.Settings{Name: "ecommerce-api"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an instrumented http.Client. A zero timeout leaves
// the transport defaults in place.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func newBreaker(settings gobreaker.Settings) *gobreaker.CircuitBreaker[*response] {
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if settings.IsSuccessful == nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}
	if settings.Timeout == 0 {
		settings.Timeout = 30 * time.Second
	}
	if settings.OnStateChange == nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		}
	}
	return gobreaker.NewCircuitBreaker[*response](settings)
}

// Request describes one call to the API. Path segments are escaped and
// joined onto the base URL.
type Request struct {
	Method string
	Path   []string
	Query  url.Values
	Token  string
	Body   any
}

type response struct {
	status int
	body   []byte
}

type requestIDKey struct{}

// ContextWithRequestID makes outbound requests carry id as X-Request-ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Do performs the request and decodes a 2xx body into out (when non-nil).
// It returns a *ConnectivityError when no response arrived and an *APIError
// for any non-2xx status.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	segments := make([]string, len(r.Path))
	for i, s := range r.Path {
		segments[i] = url.PathEscape(s)
	}
	u := c.baseURL.JoinPath(segments...)
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", r.Method, u.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", r.Method, u.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set(tokenHeader, r.Token)
	}
	req.Header.Set(requestIDHeader, requestIDFromContext(ctx))

	res, err := c.roundTrip(req)
	if err != nil && !errors.Is(err, errServerFailure) {
		return &ConnectivityError{Method: r.Method, URL: u.String(), Err: err}
	}

	if res.status < 200 || res.status >= 300 {
		return newAPIError(res.status, res.body, r.Token != "")
	}

	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.Method, u.Path, err)
	}
	return nil
}

// roundTrip sends req through the circuit breaker. 5xx responses count as
// breaker failures and come back together with errServerFailure.
func (c *Client) roundTrip(req *http.Request) (*response, error) {
	return c.breaker.Execute(func() (*response, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		res := &response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return res, errServerFailure
		}
		return res, nil
	})
}

func requireToken(token string) error {
	if token == "" {
		return ErrNoToken
	}
	return nil
}
