package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "roadmap_query:learn go", Key("roadmap_query", "learn go"))
	assert.Equal(t, "user:1:favorites", Key("user", "1", "favorites"))
	assert.Equal(t, "health", Key("health"))
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "v", 60*time.Second))

	value, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestMemoryStore_Miss(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, "k", "v", 60*time.Second))

	// TTL内可读
	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)

	// 时间推进越过TTL后读取返回未命中
	current = current.Add(61 * time.Second)
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok)

	// 过期条目已被惰性清除
	store.mu.RLock()
	_, exists := store.data["k"]
	store.mu.RUnlock()
	assert.False(t, exists)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_ClearPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "roadmap:1", "a", time.Minute))
	require.NoError(t, store.Set(ctx, "roadmap:2", "b", time.Minute))
	require.NoError(t, store.Set(ctx, "other:1", "c", time.Minute))

	count, err := store.ClearPrefix(ctx, "roadmap")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, ok := store.Get(ctx, "roadmap:1")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "roadmap:2")
	assert.False(t, ok)

	value, ok := store.Get(ctx, "other:1")
	require.True(t, ok)
	assert.Equal(t, "c", value)
}

func TestMemoryStore_SetWithoutTTLDoesNotExpire(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	current = current.Add(24 * time.Hour)

	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)
}
