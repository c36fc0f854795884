// Package suggest asks an external language model for advice on
// bottleneck tasks.
//
// The analysis never depends on this package: suggestions are opaque
// display text. A [Suggester] failure is reported per task by [FetchAll]
// and never aborts sibling fetches or the analysis that produced the
// bottlenecks.
//
// [New] picks a provider from configuration. Without an API key it returns
// [Disabled], whose calls fail with [ErrNotConfigured].
package suggest

import (
	"context"
	"time"

	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/config"
	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/task"
)

// ErrNotConfigured is returned when no suggestion provider is available.
var ErrNotConfigured = errors.New(errors.ErrCodeNotConfigured,
	"suggestions are not configured; set GEMINI_API_KEY or suggest.api_key")

// Suggester produces advice for one task given the whole plan as context.
type Suggester interface {
	// Name identifies the provider and model, e.g. "gemini/gemini-2.0-flash".
	Name() string
	Suggest(ctx context.Context, t task.Task, all []task.Task) (string, error)
}

// Disabled is the Suggester used when no provider is configured.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Suggest(context.Context, task.Task, []task.Task) (string, error) {
	return "", ErrNotConfigured
}

// New returns the provider selected by cfg. c may be nil to disable caching.
func New(cfg config.SuggestConfig, c cache.Cache, keyer cache.Keyer, ttl time.Duration) Suggester {
	if cfg.Provider == config.ProviderNone || cfg.APIKey == "" {
		return Disabled{}
	}
	var s Suggester = NewGemini(GeminiOptions{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout.Std(),
	})
	if c != nil {
		s = Cached(s, c, keyer, ttl)
	}
	return s
}

// Configured reports whether s can produce suggestions at all.
func Configured(s Suggester) bool {
	if s == nil {
		return false
	}
	_, disabled := s.(Disabled)
	return !disabled
}

// cached decorates a Suggester with a cache keyed by provider and prompt.
type cached struct {
	next  Suggester
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// Cached wraps s so identical prompts to the same provider are answered
// from c. Errors are never cached.
func Cached(s Suggester, c cache.Cache, keyer cache.Keyer, ttl time.Duration) Suggester {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &cached{next: s, cache: c, keyer: keyer, ttl: ttl}
}

func (c *cached) Name() string { return c.next.Name() }

func (c *cached) Suggest(ctx context.Context, t task.Task, all []task.Task) (string, error) {
	key := c.keyer.SuggestionKey(c.next.Name(), Prompt(t, all))
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "suggestion")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "suggestion")

	text, err := c.next.Suggest(ctx, t, all)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(text), c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "suggestion", len(text))
	}
	return text, nil
}
