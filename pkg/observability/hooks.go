// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about region processing and cache operations.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetCacheHooks(observability.NewCacheStats())
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRegionStart(ctx, region)
//	// ... partition and write tiles ...
//	observability.Pipeline().OnRegionComplete(ctx, region, written, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the label generation pipeline.
type PipelineHooks interface {
	// Region events
	OnRegionStart(ctx context.Context, region string)
	OnRegionComplete(ctx context.Context, region string, written int, duration time.Duration, err error)

	// OnTileWritten records a label file written for one tile.
	OnTileWritten(ctx context.Context, region, tile string, nodes, edges int)
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

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRegionStart(context.Context, string) {}
func (NoopPipelineHooks) OnRegionComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnTileWritten(context.Context, string, string, int, int) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Cache Statistics
// =============================================================================

// CacheStats is a CacheHooks implementation that counts events.
// It is safe for concurrent use.
type CacheStats struct {
	mu     sync.Mutex
	hits   int
	misses int
	sets   int
	bytes  int
}

// NewCacheStats creates an empty counter set.
func NewCacheStats() *CacheStats {
	return &CacheStats{}
}

func (s *CacheStats) OnCacheHit(context.Context, string) {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *CacheStats) OnCacheMiss(context.Context, string) {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

func (s *CacheStats) OnCacheSet(_ context.Context, _ string, size int) {
	s.mu.Lock()
	s.sets++
	s.bytes += size
	s.mu.Unlock()
}

// Snapshot returns the current hit, miss and set counts.
func (s *CacheStats) Snapshot() (hits, misses, sets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses, s.sets
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
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

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
}
