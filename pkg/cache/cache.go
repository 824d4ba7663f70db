// Package cache stores decoded region graphs between runs.
//
// Decoding a large region's GeoJSON dominates the cost of a run, while the
// decoded graph (endpoint coordinates and edges only) is small. Entries are
// keyed by the SHA-256 of the geometry file content, so an edited file never
// hits a stale entry.
//
// Two implementations are provided:
//   - [FileCache]: one JSON file per entry under a directory, for CLI use
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// Cache failures are never fatal to callers; a failed read is a miss.
package cache

import (
	"context"
	"time"
)

// TTLGraph is how long a decoded region graph stays cached.
const TTLGraph = 30 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached data and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
