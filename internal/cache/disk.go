package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// DiskCache persists response bodies under a directory so repeated
// digest runs within the TTL window do not re-hit upstream servers.
// Write failures are silent: a digest with a cold cache is still a
// correct digest.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache rooted at dir.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

type diskEntry struct {
	Body      []byte    `json:"body"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the cached body for key. Unreadable, corrupt, and expired
// entries all read as misses; expired files are removed on the way out.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Body, true
}

// Set stores value under key for the cache's configured lifetime.
func (c *DiskCache) Set(key string, value []byte) {
	entry := diskEntry{
		Body:      value,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return
	}
	_ = os.WriteFile(c.path(key), data, 0644)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".cache")
}
