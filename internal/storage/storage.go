package storage

import (
	"context"
	"errors"
)

// Storage is durable key-value storage for client state that must survive a
// restart of the process.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrNotFound = errors.New("key not found")
