package astrewrite

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/duckdbfan/drizzle-duckdb-sub000/internal/domain"
)

// DefaultCacheSize is the capacity used when none (or a non-positive one)
// is configured.
const DefaultCacheSize = 500

// Cache is a fixed-capacity LRU of rewrite results keyed by the original
// statement text. It is safe for concurrent use: the LRU carries its own
// lock, and concurrent misses on the same key compute once.
type Cache struct {
	entries *lru.Cache[string, domain.TransformResult]
	group   singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits      uint64 `json:"hits" yaml:"hits"`
	Misses    uint64 `json:"misses" yaml:"misses"`
	Evictions uint64 `json:"evictions" yaml:"evictions"`
}

// NewCache creates a cache holding at most size entries.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c := &Cache{}
	entries, err := lru.NewWithEvict[string, domain.TransformResult](size, func(string, domain.TransformResult) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("create transform cache: %w", err)
	}
	c.entries = entries
	return c, nil
}

// GetOrCompute returns the cached result for key, promoting it to most
// recently used. On a miss it runs compute, stores the result (evicting the
// least recently used entry at capacity) and returns it.
func (c *Cache) GetOrCompute(key string, compute func() domain.TransformResult) domain.TransformResult {
	if res, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return res
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have stored it between the Get above and here.
		if res, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return res, nil
		}
		c.misses.Add(1)
		res := compute()
		c.entries.Add(key, res)
		return res, nil
	})
	return v.(domain.TransformResult)
}

// Contains reports whether key is cached without touching its recency.
func (c *Cache) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Clear empties the cache and resets its counters.
func (c *Cache) Clear() {
	c.entries.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
