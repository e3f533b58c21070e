package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/storage"
)

// TokenKey is the storage key the token is persisted under. Its absence is
// the unauthenticated state.
const TokenKey = "token"

// Store holds the shopper's session token. One Store is shared by every
// consumer in the process; changes are visible to all of them immediately.
type Store struct {
	mu      sync.RWMutex
	token   string
	storage storage.Storage

	listenersMu sync.Mutex
	onClear     []func()
}

func NewStore(s storage.Storage) *Store {
	return &Store{storage: s}
}

// Load reads the persisted token, if any, into memory.
func (s *Store) Load(ctx context.Context) error {
	token, err := s.storage.Get(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		token = ""
	} else if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Store) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// SetToken updates the in-memory token and persists it. The in-memory value
// is updated even if persisting fails. An empty token clears the session.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	return nil
}

// ClearToken removes the token from memory and storage and notifies the
// OnClear listeners.
func (s *Store) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	err := s.storage.Delete(ctx, TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		err = nil
	}

	s.listenersMu.Lock()
	listeners := append([]func(){}, s.onClear...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}

	if err != nil {
		return fmt.Errorf("remove session token: %w", err)
	}
	return nil
}

// OnClear registers fn to run every time the session is cleared.
func (s *Store) OnClear(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.onClear = append(s.onClear, fn)
}
