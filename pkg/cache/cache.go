// Package cache provides byte-level caching for rendered graph artifacts.
// The enhancer itself never caches; only the CLI's expensive render outputs
// (DOT text, SVG bytes) flow through here, keyed by content hashes so a
// changed build file never serves a stale image.
//
// Three backends are provided: FileCache for local CLI usage, RedisCache
// for shared environments, and NullCache to disable caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional
// expiration. Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the cache's resources.
	Close() error
}

// Keyer generates cache keys for the artifact types the CLI caches.
type Keyer interface {
	// GraphKey generates a key for a serialized rule graph, derived from
	// the build file content hash.
	GraphKey(buildFileHash string) string

	// RenderKey generates a key for a rendered artifact, derived from the
	// graph content hash and the render options.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the render parameters that affect artifact content.
type RenderKeyOpts struct {
	Format   string // "dot", "svg", or "json"
	Detailed bool
}

// DefaultKeyer generates unscoped keys. Keys embed a SHA-256 of all
// parameters, so any option change produces a different key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// GraphKey implements Keyer.
func (k *DefaultKeyer) GraphKey(buildFileHash string) string {
	return hashKey("graph", buildFileHash)
}

// RenderKey implements Keyer.
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}
