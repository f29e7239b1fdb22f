package cache

import "time"

// LayeredCache fronts a persistent disk cache with a fast memory cache.
// Reads check memory first, then disk; disk hits are promoted back into
// memory. Each layer applies its own TTL, so a body can outlive its
// memory entry and still be served from disk on the next run.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates the standard two-layer fetch cache.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get returns the cached body for key, checking memory before disk.
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val)
		return val, true
	}

	return nil, false
}

// Set stores value in both layers.
func (c *LayeredCache) Set(key string, value []byte) {
	c.memory.Set(key, value)
	c.disk.Set(key, value)
}
