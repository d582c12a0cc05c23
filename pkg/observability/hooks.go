// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about document loads, recipe cache operations and source
// fetches.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The HTTP server registers a Prometheus implementation; the CLI leaves the
// no-op defaults in place.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLoadHooks(&myLoadHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Load().OnLoadStart(ctx, source)
//	// ... fetch and parse ...
//	observability.Load().OnLoadComplete(ctx, source, len(recipes), duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Load Hooks
// =============================================================================

// LoadHooks receives events from document loads (fetch + parse).
type LoadHooks interface {
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, recipes int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from recipe cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, backend string)

	// OnCacheMiss records a cache miss (absent or expired).
	OnCacheMiss(ctx context.Context, backend string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, backend string, size int)

	// OnCacheError records a backend failure that was degraded to direct loading.
	OnCacheError(ctx context.Context, backend, op string, err error)
}

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from source fetches.
type FetchHooks interface {
	// OnFetch records a completed fetch. size is the number of bytes read;
	// err is nil on success.
	OnFetch(ctx context.Context, scheme string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLoadHooks is a no-op implementation of LoadHooks.
type NoopLoadHooks struct{}

func (NoopLoadHooks) OnLoadStart(context.Context, string)                               {}
func (NoopLoadHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)                  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)                 {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int)             {}
func (NoopCacheHooks) OnCacheError(context.Context, string, string, error) {}

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetch(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	loadHooks  LoadHooks  = NoopLoadHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	fetchHooks FetchHooks = NoopFetchHooks{}
	hooksMu    sync.RWMutex
)

// SetLoadHooks registers custom load hooks.
// This should be called once at application startup before any loads.
func SetLoadHooks(h LoadHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		loadHooks = h
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

// SetFetchHooks registers custom fetch hooks.
// This should be called once at application startup before any fetches.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// Load returns the registered load hooks.
func Load() LoadHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return loadHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	loadHooks = NoopLoadHooks{}
	cacheHooks = NoopCacheHooks{}
	fetchHooks = NoopFetchHooks{}
}
