// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about enhancement runs, build-file loading, and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEnhancerHooks(&myEnhancerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Enhancer().OnEnhanceStart(ctx, target)
//	// ... generate sub-rules ...
//	observability.Enhancer().OnEnhanceComplete(ctx, target, ruleCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Enhancer Hooks
// =============================================================================

// EnhancerHooks receives events from rule-graph enhancement.
type EnhancerHooks interface {
	// Enhance events
	OnEnhanceStart(ctx context.Context, target string)
	OnEnhanceComplete(ctx context.Context, target string, ruleCount int, duration time.Duration, err error)

	// Build-file load events
	OnLoadStart(ctx context.Context, path string)
	OnLoadComplete(ctx context.Context, path string, ruleCount int, duration time.Duration, err error)

	// Export events
	OnExportStart(ctx context.Context, format string)
	OnExportComplete(ctx context.Context, format string, duration time.Duration, err error)
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

// NoopEnhancerHooks is a no-op implementation of EnhancerHooks.
type NoopEnhancerHooks struct{}

func (NoopEnhancerHooks) OnEnhanceStart(context.Context, string) {}
func (NoopEnhancerHooks) OnEnhanceComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopEnhancerHooks) OnLoadStart(context.Context, string) {}
func (NoopEnhancerHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopEnhancerHooks) OnExportStart(context.Context, string)                          {}
func (NoopEnhancerHooks) OnExportComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	enhancerHooks EnhancerHooks = NoopEnhancerHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetEnhancerHooks registers custom enhancer hooks.
// This should be called once at application startup before any enhancement runs.
func SetEnhancerHooks(h EnhancerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		enhancerHooks = h
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

// Enhancer returns the registered enhancer hooks.
func Enhancer() EnhancerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return enhancerHooks
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
	enhancerHooks = NoopEnhancerHooks{}
	cacheHooks = NoopCacheHooks{}
}
