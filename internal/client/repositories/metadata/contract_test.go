package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract checks the behavior every Repository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

		v, err := r.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, v)
	})

	t.Run("missing key is nil nil", func(t *testing.T) {
		r := newRepo(t)
		v, err := r.Get(ctx, "absent")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "k", []byte("old")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("list returns all pairs", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
		require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Len(t, m, 2)
		assert.Equal(t, []byte{0xAA}, m["a"])
		assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
		require.NoError(t, r.Delete(ctx, "x"))

		v, err := r.Get(ctx, "x")
		require.NoError(t, err)
		assert.Nil(t, v)

		require.NoError(t, r.Delete(ctx, "x"))
	})

	t.Run("clear removes everything", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "a", []byte{1}))
		require.NoError(t, r.Set(ctx, "b", []byte{2}))
		require.NoError(t, r.Clear(ctx))

		m, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("update sees current value", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Set(ctx, "n", []byte("1")))

		var seen []byte
		require.NoError(t, r.Update(ctx, "n", func(current []byte) ([]byte, error) {
			seen = current
			return append(current, '2'), nil
		}))

		assert.Equal(t, []byte("1"), seen)
		v, err := r.Get(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, []byte("12"), v)
	})

	t.Run("update with nil result leaves key absent", func(t *testing.T) {
		r := newRepo(t)
		require.NoError(t, r.Update(ctx, "ghost", func(current []byte) ([]byte, error) {
			assert.Nil(t, current)
			return nil, nil
		}))

		v, err := r.Get(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}
