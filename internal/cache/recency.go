// Package cache provides a bounded recency set for inbound message deduplication.
package cache

import (
	"sync"
)

// DefaultRecencySize is the default capacity of a RecencyCache.
const DefaultRecencySize = 100

// RecencyCache remembers the most recently seen keys, up to a fixed capacity.
// When full, the oldest inserted key is evicted to admit a new one. A key that
// is present is never reprocessed by callers, so Check doubles as the record
// step: the first call for a key inserts it and reports false, every later
// call reports true until the key ages out.
type RecencyCache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	seen     map[string]struct{}
}

// NewRecencyCache creates a cache holding up to capacity keys.
// Non-positive capacities fall back to DefaultRecencySize.
func NewRecencyCache(capacity int) *RecencyCache {
	if capacity <= 0 {
		capacity = DefaultRecencySize
	}
	return &RecencyCache{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

// Check reports whether key was already seen, recording it if not.
// Empty keys are never recorded and never count as duplicates.
func (c *RecencyCache) Check(key string) bool {
	if key == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return true
	}
	c.insert(key)
	return false
}

// Record inserts key without reporting duplicate status.
// Used to seed the cache with history at startup.
func (c *RecencyCache) Record(key string) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[key]; ok {
		return
	}
	c.insert(key)
}

// insert adds key, evicting the oldest entry when at capacity.
// Caller holds c.mu.
func (c *RecencyCache) insert(key string) {
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.seen, oldest)
	}
	c.order = append(c.order, key)
	c.seen[key] = struct{}{}
}

// Contains reports whether key is present without recording it.
func (c *RecencyCache) Contains(key string) bool {
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[key]
	return ok
}

// Size returns the current number of entries.
func (c *RecencyCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

// Keys returns the tracked keys in insertion order (for diagnostics).
func (c *RecencyCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	return keys
}
