package preload

import (
	"sync"
	"time"
)

// DateKey renders the cache key for a calendar date.
func DateKey(date time.Time) string { return date.Format("2006-01-02") }

// Cache stores one allocation decision per date. It is an explicit handle
// passed to the Allocator so its lifetime and invalidation are part of the
// caller's contract, not a hidden global.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Summary
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Summary)}
}

// Get returns the cached summary for the date key.
func (c *Cache) Get(key string) (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[key]
	return s, ok
}

// Store replaces the entry for the date key.
func (c *Cache) Store(key string, s Summary) {
	c.mu.Lock()
	c.entries[key] = s
	c.mu.Unlock()
}

// Invalidate removes the entry for the date key in one step, so a forced
// replan never observes a half-cleared cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
