package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStorage instance
func setupTestRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	s := NewRedisStorage(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return s, mr, cleanup
}

func TestRedisGet_Success(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, mr.Set(redisKey("token"), "abc"))

	value, err := s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)
}

func TestRedisGet_Missing(t *testing.T) {
	s, _, cleanup := setupTestRedis(t)
	defer cleanup()

	value, err := s.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, value)
}

func TestRedisSet_StoresWithoutTTL(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	require.NoError(t, s.Set(context.Background(), "token", "abc"))

	stored, err := mr.Get("storefront:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", stored)
	assert.Zero(t, mr.TTL("storefront:token"))
}

func TestRedisDelete(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Delete(ctx, "token"))
	assert.False(t, mr.Exists(redisKey("token")))
}

func TestRedisGet_ServerError(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.SetError("ERR server unavailable")

	_, err := s.Get(context.Background(), "token")
	require.ErrorContains(t, err, "redis get failed")
}
