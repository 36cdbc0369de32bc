// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about sink filling and result caching.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the numerical packages
// never import an observability backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFillHooks(&myFillHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Fill().OnFillStart(nodes, slope)
//	// ... fill ...
//	observability.Fill().OnFillComplete(filled, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fill Hooks
// =============================================================================

// FillHooks receives events from a sink-filling run. Fills are synchronous,
// so the events carry no context.
type FillHooks interface {
	// OnFillStart records the start of a fill over nodes grid nodes.
	OnFillStart(nodes int, slope float64)

	// OnLakesMapped records one depression detection pass.
	OnLakesMapped(pass, lakes int)

	// OnLakePerturbed records a lake that received a gradient. Nested is
	// true when the lake sits inside one treated earlier.
	OnLakePerturbed(code int, nested bool, attempts int, slope float64)

	// OnLocalReject records a gradient rejected because it reversed the
	// drainage around the lake's margin.
	OnLocalReject(code, attempt int)

	// OnInstability records a global restart and the slope it restarts with.
	OnInstability(attempt int, slope float64)

	// OnFillComplete records the end of a fill and how many nodes changed.
	OnFillComplete(filled int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFillHooks is a no-op implementation of FillHooks.
type NoopFillHooks struct{}

func (NoopFillHooks) OnFillStart(int, float64)                  {}
func (NoopFillHooks) OnLakesMapped(int, int)                    {}
func (NoopFillHooks) OnLakePerturbed(int, bool, int, float64)   {}
func (NoopFillHooks) OnLocalReject(int, int)                    {}
func (NoopFillHooks) OnInstability(int, float64)                {}
func (NoopFillHooks) OnFillComplete(int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fillHooks  FillHooks  = NoopFillHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	hooksMu    sync.RWMutex
)

// SetFillHooks registers custom fill hooks.
// This should be called once at application startup before any fill runs.
func SetFillHooks(h FillHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fillHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Fill returns the registered fill hooks.
func Fill() FillHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fillHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	fillHooks = NoopFillHooks{}
	cacheHooks = NoopCacheHooks{}
}
