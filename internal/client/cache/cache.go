// Package cache implements the fixed-capacity document cache kept by every
// collection. Entries are ordered by recency; lookups and writes are O(1).
//
// A Cache is not safe for concurrent use. The owning collection serializes
// access.
package cache

import (
	"fmt"

	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/metrics"
	"github.com/hashicorp/golang-lru/simplelru"
)

type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type Cache struct {
	lru      *simplelru.LRU
	metrics  *metrics.Metrics
	stats    Stats
	capacity int
}

type Option func(*Cache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache holding at most capacity documents.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCapacity, capacity)
	}
	c := &Cache{capacity: capacity, metrics: metrics.NewUnregistered()}
	for _, opt := range opts {
		opt(c)
	}

	lru, err := simplelru.NewLRU(capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCapacity, err)
	}
	c.lru = lru
	return c, nil
}

// Get returns the cached document and marks it most recently used.
func (c *Cache) Get(key string) (models.Object, bool) {
	v, ok := c.lru.Get(key)
	c.metrics.ObserveCacheLookup(ok)
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return v.(models.Object), true
}

// Put inserts or replaces key as the most recently used entry, evicting the
// least recently used one when the cache is full.
func (c *Cache) Put(key string, obj models.Object) {
	if c.lru.Add(key, obj) {
		c.stats.Evictions++
	}
}

// Delete removes key. It fails with common.ErrCacheKey when key is absent.
func (c *Cache) Delete(key string) error {
	if !c.lru.Remove(key) {
		return fmt.Errorf("%w: %q", common.ErrCacheKey, key)
	}
	return nil
}

// Chain lists the keys from most to least recently used.
func (c *Cache) Chain() []string {
	keys := c.lru.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = k.(string)
	}
	return out
}

func (c *Cache) Len() int      { return c.lru.Len() }
func (c *Cache) Capacity() int { return c.capacity }
func (c *Cache) Stats() Stats  { return c.stats }

// Purge drops every entry. Only entries pushed out by Put count as
// evictions; Delete and Purge do not.
func (c *Cache) Purge() {
	c.lru.Purge()
}
