// Package cache provides byte-level caching for generated charts and
// rendered artifacts.
//
// Chart generation is deterministic: the same chart definition always
// yields the same geometry. The pipeline therefore caches the chart JSON
// under a hash of its definition and each rendered artifact under a hash of
// the chart, and skips the work entirely on a hit.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under a local directory (CLI)
//   - [RedisCache]: shared cache for multi-instance API deployments
//
// # Keys
//
// A [Keyer] turns request parameters into cache keys. [DefaultKeyer] hashes
// the parameters; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// ChartTTL is how long generated chart geometry is cached.
	ChartTTL = 7 * 24 * time.Hour

	// ArtifactTTL is how long rendered outputs (json, csv) are cached.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value cache with per-entry expiration.
type Cache interface {
	// Get returns the value for key. The bool is false on a miss; a miss
	// is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ChartKey returns the key for generated chart geometry.
	ChartKey(opts ChartKeyOpts) string

	// ArtifactKey returns the key for a rendered output of a chart.
	ArtifactKey(chartHash string, opts ArtifactKeyOpts) string
}

// ChartKeyOpts identifies a chart generation request.
type ChartKeyOpts struct {
	Projection string `json:"projection"`
	Spec       []byte `json:"spec"`               // Canonical JSON of the chart definition
	Sounding   string `json:"sounding,omitempty"` // Hash of an overlaid sounding, if any
}

// ArtifactKeyOpts identifies a rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes request parameters into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ChartKey returns "chart:<sha256>".
func (k *DefaultKeyer) ChartKey(opts ChartKeyOpts) string {
	return hashKey("chart", opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (k *DefaultKeyer) ArtifactKey(chartHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", chartHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
