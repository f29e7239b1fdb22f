package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryCleanupInterval is how often expired entries are swept. A digest
// run lasts minutes at most, so one sweep mid-run is plenty.
const memoryCleanupInterval = 10 * time.Minute

// MemoryCache keeps response bodies in process memory. It serves
// repeated fetches of the same URL within a single run, such as a paper
// page fetched for enrichment after its feed entry.
type MemoryCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:   ttl,
		store: gocache.New(ttl, memoryCleanupInterval),
	}
}

// Get returns the cached body for key, if present and unexpired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.store.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores value under key for the cache's configured lifetime.
func (c *MemoryCache) Set(key string, value []byte) {
	c.store.Set(key, value, c.ttl)
}
