// Package cache provides response-cache backends for the HTTP client layer.
//
// Three backends are available:
//   - [FileCache]: filesystem entries under ~/.cache/vllm-wheels/, the CLI default
//   - [RedisCache]: shared cache for CI runs, backed by go-redis
//   - [NullCache]: disables caching entirely
//
// Entries carry a per-entry TTL. Keys are hashed before storage so arbitrary
// URLs are safe to use as keys.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss
	// (including expired entries).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
