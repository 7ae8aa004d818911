// Package cache provides an in-process LRU cache with TTL expiry, used to
// memoize retrieval answers for repeated report queries.
package cache

import (
	"context"
	"time"
)

// CacheService defines the cache service interface.
type CacheService interface {
	// Get retrieves a value from cache.
	// Returns: value, whether it exists
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value in cache.
	// ttl: expiration time
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate invalidates cache entries.
	// pattern: supports a trailing wildcard (report:2024-q3:*)
	Invalidate(ctx context.Context, pattern string) error
}
