package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"
)

// LRUCache is a fixed-capacity cache with per-entry TTL. Reads refresh
// recency; expired entries are dropped lazily on access and swept by the
// service's cleanup loop.
type LRUCache struct {
	capacity   int
	defaultTTL time.Duration
	mu         sync.RWMutex

	entries map[string]*cacheEntry
	order   *list.List
}

type cacheEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

// NewLRUCache creates a new LRU cache.
func NewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*cacheEntry),
		order:      list.New(),
	}
}

// Get retrieves a value and marks it most recently used.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(e)
		return nil, false
	}

	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores a value, evicting the least recently used entries when the
// cache is at capacity. A non-positive ttl falls back to the default.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*cacheEntry))
	}

	e := &cacheEntry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.entries[key] = e
}

// Invalidate removes entries matching the pattern. A trailing * matches by
// prefix; anything else is an exact key. Returns the number removed.
func (c *LRUCache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(pattern, "*") {
		if e, ok := c.entries[pattern]; ok {
			c.remove(e)
			return 1
		}
		return 0
	}

	prefix := strings.TrimSuffix(pattern, "*")
	count := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.remove(e)
			count++
		}
	}
	return count
}

// Size returns the number of entries in the cache.
func (c *LRUCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order.Init()
}

// CleanupExpired removes all expired entries and returns the count.
func (c *LRUCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var expired []*cacheEntry
	for _, e := range c.entries {
		if now.After(e.expiresAt) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		c.remove(e)
	}
	return len(expired)
}

// remove must be called with the lock held.
func (c *LRUCache) remove(e *cacheEntry) {
	c.order.Remove(e.element)
	delete(c.entries, e.key)
}
