// Package cache holds the in-memory caches that sit in front of the
// aggregation pipeline. Both caches are safe for concurrent use.
package cache

import (
	"github.com/jellydator/ttlcache/v3"
)

// DefaultLRUCapacity is the number of filter results kept by default.
const DefaultLRUCapacity = 20

// LRU is a fixed-capacity least-recently-used cache keyed by string. Entries
// never expire; they only leave through eviction or Clear.
type LRU[V any] struct {
	items *ttlcache.Cache[string, V]
}

// NewLRU returns an LRU holding at most capacity entries. A non-positive
// capacity falls back to DefaultLRUCapacity.
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity <= 0 {
		capacity = DefaultLRUCapacity
	}
	return &LRU[V]{
		items: ttlcache.New[string, V](
			ttlcache.WithCapacity[string, V](uint64(capacity)),
		),
	}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[V]) Get(key string) (V, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[V]) Set(key string, value V) {
	c.items.Set(key, value, ttlcache.DefaultTTL)
}

// Has reports whether key is cached without touching its recency.
func (c *LRU[V]) Has(key string) bool {
	return c.items.Has(key)
}

func (c *LRU[V]) Len() int {
	return c.items.Len()
}

// Keys returns the cached keys in no particular order.
func (c *LRU[V]) Keys() []string {
	return c.items.Keys()
}

// Clear drops every entry.
func (c *LRU[V]) Clear() {
	c.items.DeleteAll()
}

// Metrics reports lifetime hit, miss and eviction counts.
func (c *LRU[V]) Metrics() ttlcache.Metrics {
	return c.items.Metrics()
}
