// Package cache stores pass reports and rendered artifacts keyed by graph
// content hash.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as JSON files for CLI usage
//   - [RedisCache] shares entries between processes through Redis
//
// Keys come from a [Keyer] so that callers never build key strings by hand:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ReportKey(cache.Hash(encoded))
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored data and true, or false on a miss. Expired or
	// unreadable entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// ReportKey returns the key for the last pass report of a graph.
	ReportKey(graphHash string) string

	// ArtifactKey returns the key for a rendered view of a graph.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer produces keys of the form "kind:sha256(parts)".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReportKey implements [Keyer].
func (DefaultKeyer) ReportKey(graphHash string) string {
	return hashKey("report", graphHash)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}
