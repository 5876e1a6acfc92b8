package enrichment

import (
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// LookupCache provides in-memory caching of external lookups
type LookupCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	hitCount  atomic.Uint64
	missCount atomic.Uint64
}

// NewLookupCache creates a cache whose entries expire after ttl
func NewLookupCache(ttl time.Duration) *LookupCache {
	return &LookupCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves a cached value
func (c *LookupCache) Get(key string) (any, bool) {
	if v, found := c.cache.Get(key); found {
		c.hitCount.Add(1)
		return v, true
	}
	c.missCount.Add(1)
	return nil, false
}

// Set stores a value with the default TTL
func (c *LookupCache) Set(key string, v any) {
	c.cache.Set(key, v, c.ttl)
}

// Stats returns cache statistics
func (c *LookupCache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hitCount.Load()
	misses = c.missCount.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (c *LookupCache) ItemCount() int {
	return c.cache.ItemCount()
}
