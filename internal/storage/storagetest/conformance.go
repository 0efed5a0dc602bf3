// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/profilesync/internal/storage"
)

// Run exercises b against the storage.Backend contract. b must start empty.
func Run(t *testing.T, b storage.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, found, err := b.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "access_token", "abc"))
		v, found, err := b.Get(ctx, "access_token")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "abc", v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "access_token", "def"))
		v, _, err := b.Get(ctx, "access_token")
		require.NoError(t, err)
		assert.Equal(t, "def", v)
	})

	t.Run("json value survives", func(t *testing.T) {
		doc := `{"id":1,"fullName":"Ada \"Countess\" Lovelace","email":"ada@example.com"}`
		require.NoError(t, b.Set(ctx, "user", doc))
		v, found, err := b.Get(ctx, "user")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, doc, v)
	})

	t.Run("delete several", func(t *testing.T) {
		require.NoError(t, b.Set(ctx, "refresh_token", "r"))
		require.NoError(t, b.Delete(ctx, "access_token", "refresh_token", "user", "never-set"))

		for _, key := range []string{"access_token", "refresh_token", "user"} {
			_, found, err := b.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, found, key)
		}
	})
}
