// Package observability lets an application observe analyses, suggestion
// fetches and cache traffic without the libraries depending on a metrics
// backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	func main() {
//	    observability.SetAnalysisHooks(&promAnalysisHooks{})
//	    // ... run application
//	}
//
// Libraries emit events through the accessors:
//
//	observability.Analysis().OnAnalyzeStart(ctx, len(tasks))
//	r := analysis.Analyze(tasks, opts)
//	observability.Analysis().OnAnalyzeComplete(ctx, len(r.Tasks), len(r.Bottlenecks), time.Since(start), nil)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Analysis Hooks
// =============================================================================

// AnalysisHooks receives events from the ingest and analysis stages.
type AnalysisHooks interface {
	OnIngestComplete(ctx context.Context, format string, tasks, skipped int, duration time.Duration, err error)
	OnAnalyzeStart(ctx context.Context, tasks int)
	OnAnalyzeComplete(ctx context.Context, tasks, bottlenecks int, duration time.Duration, err error)
}

// =============================================================================
// Suggestion Hooks
// =============================================================================

// SuggestHooks receives events from suggestion providers.
type SuggestHooks interface {
	OnSuggestStart(ctx context.Context, provider string, taskID int)
	OnSuggestComplete(ctx context.Context, provider string, taskID int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnIngestComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopAnalysisHooks) OnAnalyzeStart(context.Context, int)                              {}
func (NoopAnalysisHooks) OnAnalyzeComplete(context.Context, int, int, time.Duration, error) {}

type NoopSuggestHooks struct{}

func (NoopSuggestHooks) OnSuggestStart(context.Context, string, int)                           {}
func (NoopSuggestHooks) OnSuggestComplete(context.Context, string, int, time.Duration, error) {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	suggestHooks  SuggestHooks  = NoopSuggestHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers analysis hooks. Nil is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetSuggestHooks registers suggestion hooks. Nil is ignored.
func SetSuggestHooks(h SuggestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		suggestHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

func Suggest() SuggestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return suggestHooks
}

func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores the no-op defaults. Tests use it to isolate registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	suggestHooks = NoopSuggestHooks{}
	cacheHooks = NoopCacheHooks{}
}
