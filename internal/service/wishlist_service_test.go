package service

import (
	"context"
	"sync"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWishlistAPI struct {
	m       sync.RWMutex
	ids     []string
	err     error
	calls   int
	fetches int
}

func (m *mockWishlistAPI) Wishlist(context.Context, string) (domain.WishlistSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.fetches++
	items := make([]domain.Product, 0, len(m.ids))
	for _, id := range m.ids {
		items = append(items, domain.Product{ID: id})
	}
	return domain.WishlistSnapshot{Items: items}, nil
}

func (m *mockWishlistAPI) AddToWishlist(_ context.Context, _ string, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	for _, id := range m.ids {
		if id == productID {
			return nil
		}
	}
	m.ids = append(m.ids, productID)
	return nil
}

func (m *mockWishlistAPI) RemoveFromWishlist(_ context.Context, _ string, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	for i, id := range m.ids {
		if id == productID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockWishlistAPI) counts() (calls, fetches int) {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.calls, m.fetches
}

func TestWishlistService_AddAndRemove(t *testing.T) {
	mockAPI := &mockWishlistAPI{}
	svc := NewWishlistService(mockAPI, &mockSession{token: "tok"})
	ctx := context.Background()

	require.NoError(t, svc.AddToWishlist(ctx, "p1"))
	require.NoError(t, svc.AddToWishlist(ctx, "p2"))
	assert.True(t, svc.Contains("p1"))
	assert.Len(t, svc.Snapshot().Items, 2)
	assert.Equal(t, StateReady, svc.State())

	require.NoError(t, svc.RemoveFromWishlist(ctx, "p1"))
	assert.False(t, svc.Contains("p1"))
	assert.True(t, svc.Contains("p2"))

	calls, fetches := mockAPI.counts()
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, fetches)
}

func TestWishlistService_NoTokenIssuesNoRequest(t *testing.T) {
	mockAPI := &mockWishlistAPI{}
	svc := NewWishlistService(mockAPI, &mockSession{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddToWishlist(ctx, "p1"), ErrNotAuthenticated)
	assert.ErrorIs(t, svc.RemoveFromWishlist(ctx, "p1"), ErrNotAuthenticated)
	_, err := svc.FetchWishlist(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	calls, fetches := mockAPI.counts()
	assert.Zero(t, calls)
	assert.Zero(t, fetches)
}

func TestWishlistService_FailureKeepsSnapshot(t *testing.T) {
	mockAPI := &mockWishlistAPI{}
	svc := NewWishlistService(mockAPI, &mockSession{token: "tok"})
	ctx := context.Background()
	require.NoError(t, svc.AddToWishlist(ctx, "p1"))

	mockAPI.m.Lock()
	mockAPI.err = &api.APIError{StatusCode: 404, Message: "No product for this id p9"}
	mockAPI.m.Unlock()

	err := svc.AddToWishlist(ctx, "p9")

	assert.True(t, api.IsNotFound(err))
	assert.True(t, svc.Contains("p1"))
	assert.False(t, svc.Contains("p9"))
	assert.Equal(t, StateError, svc.State())
}

func TestWishlistService_SessionExpiry(t *testing.T) {
	mockAPI := &mockWishlistAPI{err: expiredErr()}
	sess := &mockSession{token: "tok"}
	svc := NewWishlistService(mockAPI, sess)

	err := svc.RemoveFromWishlist(context.Background(), "p1")

	assert.ErrorIs(t, err, api.ErrSessionExpired)
	assert.Equal(t, 1, sess.clears())
}

func TestWishlistService_Reset(t *testing.T) {
	mockAPI := &mockWishlistAPI{}
	svc := NewWishlistService(mockAPI, &mockSession{token: "tok"})
	require.NoError(t, svc.AddToWishlist(context.Background(), "p1"))

	svc.Reset()

	assert.True(t, svc.Snapshot().IsEmpty())
	assert.Equal(t, StateEmpty, svc.State())
	assert.NoError(t, svc.Err())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(42).String())
}
