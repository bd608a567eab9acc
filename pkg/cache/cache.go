// Package cache stores serialized resolution snapshots between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTLs. Four
// backends are provided:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a local directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for multi-instance servers
//   - [MongoCache]: a MongoDB collection with one document per key
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout. Cached snapshots carry a fingerprint of the manifests they were
// built from; callers revalidate it before trusting an entry, so the TTL
// only bounds how long stale entries linger.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLGraph = 24 * time.Hour
)

// Cache is a key/value store for serialized data.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A zero ttl on Set stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GraphKeyOpts are the resolution options that change the shape of a
// resolved graph and therefore belong in its cache key.
type GraphKeyOpts struct {
	MaxDepth     int    `json:"max_depth"`
	MaxNodes     int    `json:"max_nodes"`
	AllowCycles  bool   `json:"allow_cycles"`
	PackagesRoot string `json:"packages_root"`
}

// Keyer generates cache keys.
type Keyer interface {
	// GraphKey returns the key of the snapshot resolved from rootPath.
	GraphKey(rootPath string, opts GraphKeyOpts) string
}

// DefaultKeyer generates unprefixed keys of the form "graph:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey hashes the root manifest path together with opts.
func (DefaultKeyer) GraphKey(rootPath string, opts GraphKeyOpts) string {
	return hashKey("graph", rootPath, opts)
}
