// Package cache stores rendered diagram images between builds.
//
// Rendering DOT to SVG or PNG is deterministic, so images are keyed by a
// hash of the DOT text and the output format. The graph-generation script
// itself is never cached: every build re-runs it so changes to the eHive
// installation are always picked up.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: JSON entries under a directory (default for the CLI)
//   - [RedisCache]: shared cache for CI workers
//   - [MongoCache]: shared cache in a MongoDB collection
//
// # Keys
//
// A [Keyer] builds keys. [ScopedKeyer] prefixes them so several
// documentation projects can share one Redis or MongoDB instance.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLImage is the default lifetime of a cached image.
const TTLImage = 30 * 24 * time.Hour

// Keyer builds cache keys.
type Keyer interface {
	// ImageKey identifies a rendered image of a DOT graph.
	ImageKey(dot string, opts ImageKeyOpts) string
}

// ImageKeyOpts holds the render parameters that change the image bytes.
type ImageKeyOpts struct {
	Format string
}

// DefaultKeyer builds unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ImageKey returns "image:<sha256>" over the DOT hash and options.
func (DefaultKeyer) ImageKey(dot string, opts ImageKeyOpts) string {
	return hashKey("image", Hash([]byte(dot)), opts.Format)
}
