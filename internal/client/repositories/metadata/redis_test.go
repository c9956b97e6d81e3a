package metadata

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestRedisRepository_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) Repository {
		rdb, _ := setupRedis(t)
		return NewRedisRepository(rdb, "test")
	})
}

func TestRedisRepository_UsesNamespacedHash(t *testing.T) {
	rdb, mr := setupRedis(t)
	r := NewRedisRepository(rdb, "")

	require.NoError(t, r.Set(context.Background(), "k", []byte("v")))

	assert.Equal(t, "v", mr.HGet("tinnitrack:metadata", "k"))
}

func TestRedisRepository_ErrorsWrapped(t *testing.T) {
	rdb, mr := setupRedis(t)
	r := NewRedisRepository(rdb, "test")
	mr.Close()
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorContains(t, err, "failed to set metadata[k]")

	err = r.Update(ctx, "k", func([]byte) ([]byte, error) { return []byte("v"), nil })
	require.ErrorContains(t, err, "failed to update metadata[k]")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
