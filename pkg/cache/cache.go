// Package cache stores fill results between runs.
//
// A fill is a pure function of the input surface, its node statuses, the
// elevation field and the slope, so its output can be reused whenever those
// inputs repeat. Keys are built by a [Keyer] from a hash of the input; the
// value is a JSON-encoded [FillResult].
//
// Two backends are provided: [FileCache] for the CLI and [NullCache] when
// caching is disabled.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// FillKey is the key of a fill result for the input with hash demHash.
	FillKey(demHash string, opts FillKeyOpts) string

	// PitsKey is the key of the depression table for the input with hash demHash.
	PitsKey(demHash string, field string) string
}

// FillKeyOpts are the fill parameters that change the output.
type FillKeyOpts struct {
	Field string  `json:"field"`
	Slope float64 `json:"slope"`
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FillKey returns "fill:<sha256>" over the input hash and options.
func (DefaultKeyer) FillKey(demHash string, opts FillKeyOpts) string {
	return hashKey("fill", demHash, opts)
}

// PitsKey returns "pits:<sha256>" over the input hash and field.
func (DefaultKeyer) PitsKey(demHash string, field string) string {
	return hashKey("pits", demHash, field)
}
