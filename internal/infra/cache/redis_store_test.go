package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *redisStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisStore(client, "test:").(*redisStore)
}

func TestRedisStore_GetSet(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "categories")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "categories", []byte(`["a"]`), time.Minute))

	raw, ok, err := store.Get(ctx, "categories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(raw))
	assert.True(t, mr.Exists("test:categories"))
}

func TestRedisStore_TTLExpires(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "products:1:10", []byte(`{}`), 30*time.Second))
	mr.FastForward(31 * time.Second)

	_, ok, err := store.Get(ctx, "products:1:10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_DeletePrefix(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"products", "products:1:10", "products:2:10", "product:p1", "categories"} {
		require.NoError(t, store.Set(ctx, key, []byte(`1`), time.Minute))
	}

	require.NoError(t, store.DeletePrefix(ctx, "products"))

	assert.False(t, mr.Exists("test:products"))
	assert.False(t, mr.Exists("test:products:1:10"))
	assert.False(t, mr.Exists("test:products:2:10"))
	assert.True(t, mr.Exists("test:product:p1"))
	assert.True(t, mr.Exists("test:categories"))
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr, store := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "categories")
	assert.Error(t, err)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `cart-summary:u1:\[A,B\]`, escapeGlob("cart-summary:u1:[A,B]"))
	assert.Equal(t, `a\*b\?`, escapeGlob("a*b?"))
}
