// Package cache provides pluggable caching of registry API responses.
//
// Three backends are available:
//   - file: directory of JSON entries with expiration, for CLI usage
//   - redis: shared cache for long-running or multi-instance usage
//   - null: no-op cache for tests and --refresh style workflows
//
// Keys are arbitrary strings; backends hash them before storage, so long
// keys and keys with filesystem-unsafe characters are acceptable.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores byte payloads under string keys with per-entry TTL.
// A TTL of 0 means the entry never expires.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit;
	// a miss is (nil, false, nil), never an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value, replacing any existing entry for key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes an entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// hashKey derives a stable filesystem- and redis-safe key.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
