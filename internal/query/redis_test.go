package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jatassi/slipstream-go/internal/testutil"
)

func TestRedisStore_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	// Unique prefix so parallel runs don't collide.
	prefix := "slipstream:test:" + uuid.NewString() + ":"

	t.Run("set and get", func(t *testing.T) {
		key := prefix + "k1"
		require.NoError(t, store.Set(ctx, key, []byte("cached"), time.Minute))

		got, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("cached"), got)

		ttl := client.TTL(ctx, key).Val()
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("get non-existent key", func(t *testing.T) {
		got, err := store.Get(ctx, prefix+"missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		key := prefix + "k2"
		require.NoError(t, store.Set(ctx, key, []byte("x"), time.Minute))

		deleted, err := store.Delete(ctx, key)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.Delete(ctx, key)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("exists", func(t *testing.T) {
		key := prefix + "k3"

		exists, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, store.Set(ctx, key, []byte("x"), time.Minute))

		exists, err = store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		assert.Error(t, store.Set(ctx, "", []byte("x"), 0))
		_, err := store.Get(ctx, "")
		assert.Error(t, err)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, store.Health(ctx))
	})
}
