package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient records requests and replays a canned response.
type mockHTTPClient struct {
	mu       sync.RWMutex
	requests []*http.Request
	status   int
	body     string
	err      error
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.status,
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockHTTPClient) calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func TestDo_SendsTokenAndRequestID(t *testing.T) {
	var gotToken, gotRequestID, gotPath, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), mustURL(t, srv.URL+"/api/v1"))
	ctx := ContextWithRequestID(context.Background(), "req-42")

	var out struct {
		Message string `json:"message"`
	}
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: []string{"cart"}, Token: "tok", Body: map[string]string{"a": "b"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Message)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "/api/v1/cart", gotPath)
	assert.Equal(t, "application/json", gotContentType)
}

func TestDo_GeneratesRequestIDAndOmitsEmptyToken(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusOK, body: `{}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	require.NoError(t, c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"products"}}, nil))

	require.Equal(t, 1, m.calls())
	req := m.requests[0]
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
	assert.Empty(t, req.Header.Values("token"))
	assert.Equal(t, "https://ecommerce.routemisr.com/api/v1/products", req.URL.String())
}

func TestDo_EscapesPathSegmentsAndEncodesQuery(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusOK, body: `{}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   []string{"products", "a/b"},
		Query:  url.Values{"brand": []string{"x y"}},
	}, nil)

	require.NoError(t, err)
	req := m.requests[0]
	assert.Equal(t, "/api/v1/products/a%2Fb", req.URL.EscapedPath())
	assert.Equal(t, "brand=x+y", req.URL.RawQuery)
}

func TestDo_APIErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"message field", http.StatusBadRequest, `{"statusMsg":"fail","message":"Account Already Exists"}`, "Account Already Exists"},
		{"nested validation error", http.StatusBadRequest, `{"message":"fail","errors":{"msg":"Incorrect current password","param":"currentPassword"}}`, "Incorrect current password"},
		{"status message only", http.StatusConflict, `{"statusMsg":"fail"}`, "fail"},
		{"non json body", http.StatusNotFound, `<html>not found</html>`, "Not Found"},
		{"empty body", http.StatusBadRequest, ``, "Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockHTTPClient{status: tt.status, body: tt.body}
			c := NewClient(m, mustURL(t, DefaultBaseURL))

			err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"x"}}, nil)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestDo_SessionExpiredDetection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		token   string
		expired bool
	}{
		{"401 with token", http.StatusUnauthorized, `{"message":"Invalid Token. please login again"}`, "tok", true},
		{"sentinel message", http.StatusBadRequest, `{"message":"Expired Token. please login again"}`, "tok", true},
		{"401 without token", http.StatusUnauthorized, `{"message":"Incorrect email or password"}`, "", false},
		{"other error with token", http.StatusNotFound, `{"message":"No cart exist"}`, "tok", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockHTTPClient{status: tt.status, body: tt.body}
			c := NewClient(m, mustURL(t, DefaultBaseURL))

			err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"cart"}, Token: tt.token}, nil)

			require.Error(t, err)
			assert.Equal(t, tt.expired, errors.Is(err, ErrSessionExpired))
		})
	}
}

func TestDo_ConnectivityError(t *testing.T) {
	m := &mockHTTPClient{err: errors.New("dial tcp: connection refused")}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"products"}}, nil)

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, http.MethodGet, connErr.Method)
	assert.Contains(t, connErr.Error(), "connection refused")
	assert.False(t, errors.Is(err, ErrSessionExpired))
}

func TestDo_DecodeFailure(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusOK, body: `{"data":`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	var out map[string]any
	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"products"}}, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestDo_ServerErrorIsNotRetried(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusInternalServerError, body: `{"message":"boom"}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: []string{"cart"}, Token: "tok"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
	assert.Equal(t, 1, m.calls())
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	m := &mockHTTPClient{err: errors.New("connection reset")}
	c := NewClient(m, mustURL(t, DefaultBaseURL), WithBreaker(gobreaker.Settings{
		Name: "test",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}))

	for i := 0; i < 2; i++ {
		_ = c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"products"}}, nil)
	}
	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"products"}}, nil)

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, m.calls())
}

func TestDo_ClientErrorsDoNotTripBreaker(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusNotFound, body: `{"message":"nope"}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL), WithBreaker(gobreaker.Settings{
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	}))

	for i := 0; i < 3; i++ {
		err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: []string{"x"}}, nil)
		assert.True(t, IsNotFound(err))
	}
	assert.Equal(t, 3, m.calls())
}

func TestAuthenticatedEndpoints_RequireToken(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusOK, body: `{}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))
	ctx := context.Background()

	_, err := c.Cart(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, c.AddToCart(ctx, "", "p1"), ErrNoToken)
	assert.ErrorIs(t, c.UpdateCartItem(ctx, "", "p1", 2), ErrNoToken)
	assert.ErrorIs(t, c.RemoveCartItem(ctx, "", "p1"), ErrNoToken)
	assert.ErrorIs(t, c.ClearCart(ctx, ""), ErrNoToken)
	_, err = c.Wishlist(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.ErrorIs(t, c.AddToWishlist(ctx, "", "p1"), ErrNoToken)
	assert.ErrorIs(t, c.RemoveFromWishlist(ctx, "", "p1"), ErrNoToken)
	_, err = c.Orders(ctx, "")
	assert.ErrorIs(t, err, ErrNoToken)

	assert.Equal(t, 0, m.calls())
}

func TestOrders_AcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"_id":"o1","totalOrderPrice":10},{"_id":"o2","totalOrderPrice":20}]`, 2},
		{"data envelope", `{"results":1,"data":[{"_id":"o1","totalOrderPrice":10}]}`, 1},
		{"empty envelope", `{"results":0,"data":[]}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockHTTPClient{status: http.StatusOK, body: tt.body}
			c := NewClient(m, mustURL(t, DefaultBaseURL))

			orders, err := c.Orders(context.Background(), "tok")

			require.NoError(t, err)
			assert.NotNil(t, orders)
			assert.Len(t, orders, tt.want)
		})
	}
}

func TestCreateCheckoutSession_RequiresURL(t *testing.T) {
	m := &mockHTTPClient{status: http.StatusOK, body: `{"status":"success","session":{}}`}
	c := NewClient(m, mustURL(t, DefaultBaseURL))

	_, err := c.CreateCheckoutSession(context.Background(), "tok", "c1", shippingFixture(), "http://localhost:3000")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no url")
	assert.Equal(t, "url=http%3A%2F%2Flocalhost%3A3000", m.requests[0].URL.RawQuery)
}

func shippingFixture() domain.ShippingAddress {
	return domain.ShippingAddress{Details: "12 Nile Street, Apt 4", Phone: "01012345678", City: "Cairo"}
}
