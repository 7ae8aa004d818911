package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		cache.Set("answer:q1", []byte("Revenue was $96.5B"), 0)

		val, ok := cache.Get("answer:q1")
		assert.True(t, ok)
		assert.Equal(t, []byte("Revenue was $96.5B"), val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := cache.Get("missing")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		cache.Set("answer:q2", []byte("original"), 0)
		cache.Set("answer:q2", []byte("updated"), 0)

		val, ok := cache.Get("answer:q2")
		assert.True(t, ok)
		assert.Equal(t, []byte("updated"), val)
	})
}

func TestLRUCache_Expiration(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	cache.Set("short", []byte("v"), 10*time.Millisecond)
	_, ok := cache.Get("short")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("short")
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := NewLRUCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		cache.Set(fmt.Sprintf("k%d", i), []byte("v"), 0)
	}

	// Touch k0 so k1 becomes the eviction candidate.
	_, ok := cache.Get("k0")
	require.True(t, ok)

	cache.Set("k3", []byte("v"), 0)

	_, ok = cache.Get("k1")
	assert.False(t, ok)
	_, ok = cache.Get("k0")
	assert.True(t, ok)
	assert.Equal(t, 3, cache.Size())
}

func TestLRUCache_Invalidate(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	cache.Set("report:2024-q3:revenue", []byte("v"), 0)
	cache.Set("report:2024-q3:margin", []byte("v"), 0)
	cache.Set("report:2024-q2:revenue", []byte("v"), 0)

	t.Run("ExactKey", func(t *testing.T) {
		assert.Equal(t, 1, cache.Invalidate("report:2024-q2:revenue"))
	})

	t.Run("PrefixWildcard", func(t *testing.T) {
		assert.Equal(t, 2, cache.Invalidate("report:2024-q3:*"))
		assert.Zero(t, cache.Size())
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Zero(t, cache.Invalidate("report:*"))
	})
}

func TestLRUCache_CleanupExpired(t *testing.T) {
	cache := NewLRUCache(100, time.Minute)

	cache.Set("stale1", []byte("v"), time.Millisecond)
	cache.Set("stale2", []byte("v"), time.Millisecond)
	cache.Set("fresh", []byte("v"), time.Minute)

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, cache.CleanupExpired())
	assert.Equal(t, 1, cache.Size())
}

func TestService(t *testing.T) {
	svc := NewService(ServiceConfig{Capacity: 10, DefaultTTL: time.Minute, CleanupInterval: time.Hour})
	defer svc.Close()

	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "k", []byte("v"), 0))

	val, ok := svc.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, svc.Invalidate(ctx, "k"))
	_, ok = svc.Get(ctx, "k")
	assert.False(t, ok)
}
