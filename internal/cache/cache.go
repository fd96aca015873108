// Package cache provides a small bounded cache keyed by strings.
package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DefaultSize is used when New is called with a non-positive size.
const DefaultSize = 256

type entry[V any] struct {
	key   string
	value V
}

// Cache maps strings to values. Keys are stored by their 64-bit xxhash; the
// full key is kept alongside the value so a hash collision is a miss rather
// than a wrong answer.
//
// Eviction strategy: when the cache reaches its capacity the entire map is
// replaced. This suits a small number of distinct filters repeated many times.
//
// All methods are safe for concurrent use. Values are returned as stored, so
// callers that hand them out must copy mutable values themselves.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[uint64]entry[V]
	max   int
}

// New creates a cache holding at most size entries.
func New[V any](size int) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache[V]{
		items: make(map[uint64]entry[V], size),
		max:   size,
	}
}

// Get returns the value stored for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	h := xxhash.Sum64String(key)
	c.mu.RLock()
	e, ok := c.items[h]
	c.mu.RUnlock()
	if !ok || e.key != key {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value for key, replacing any previous value.
func (c *Cache[V]) Put(key string, value V) {
	h := xxhash.Sum64String(key)
	c.mu.Lock()
	if _, exists := c.items[h]; !exists && len(c.items) >= c.max {
		// Evict everything and start fresh rather than tracking entry ages.
		c.items = make(map[uint64]entry[V], c.max)
	}
	c.items[h] = entry[V]{key: key, value: value}
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Cap returns the maximum number of entries.
func (c *Cache[V]) Cap() int {
	return c.max
}
