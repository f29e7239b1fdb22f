package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache stores fetched response bodies between requests. Implementations
// decide their own entry lifetime; there is no invalidation operation
// because a digest run either uses the cache or bypasses it entirely.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Key generates a fixed-length cache key from a URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "econdigest:v1:" + hex.EncodeToString(hash[:])
}
