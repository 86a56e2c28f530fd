package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, err := s.Get(ctx, "never-written")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyCart, []byte(`[{"productId":"matcha-tin"}]`)))

		v, err := s.Get(ctx, KeyCart)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"productId":"matcha-tin"}]`, string(v))
	})

	t.Run("set overwrites", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, KeyOrders, []byte(`[1]`)))
		require.NoError(t, s.Set(ctx, KeyOrders, []byte(`[1,2]`)))

		v, err := s.Get(ctx, KeyOrders)
		require.NoError(t, err)
		assert.Equal(t, `[1,2]`, string(v))
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "temp", []byte("x")))
		require.NoError(t, s.Remove(ctx, "temp"))

		_, err := s.Get(ctx, "temp")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("remove missing key is not an error", func(t *testing.T) {
		assert.NoError(t, s.Remove(ctx, "not-there"))
	})
}
