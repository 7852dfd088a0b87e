package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/pulse-comb/app/cache"
	"github.com/lysyi3m/pulse-comb/app/content"
	"github.com/lysyi3m/pulse-comb/app/metrics"
	"github.com/lysyi3m/pulse-comb/app/ratelimit"
	"github.com/lysyi3m/pulse-comb/app/retry"
)

// Guarded wraps a Searcher with the source's own rate limiter, result cache
// and retry executor. Each configured source gets exactly one Guarded.
type Guarded struct {
	cfg      *Config
	searcher Searcher
	limiter  *ratelimit.Limiter
	cache    *cache.Cache[[]content.Item]
	executor *retry.Executor
	filterer *Filterer
	metrics  *metrics.Collector
}

func NewGuarded(cfg *Config, searcher Searcher, m *metrics.Collector) *Guarded {
	name := cfg.Name

	limiter := ratelimit.New(cfg.Settings.RequestsPerMinute)
	limiter.OnWait = func(d time.Duration) {
		slog.Debug("Rate limit reached, waiting", "source", name, "wait", d)
		m.LimiterWait(name, d)
	}

	executor := retry.New(cfg.RetryConfig(), limiter)
	executor.OnRetry = func(attempt int, delay time.Duration, err error) {
		m.Retry(name)
	}

	return &Guarded{
		cfg:      cfg,
		searcher: searcher,
		limiter:  limiter,
		cache: cache.New[[]content.Item](
			time.Duration(cfg.Settings.CacheTTL)*time.Second,
			cfg.Settings.CacheMaxEntries,
			cache.Hooks{
				OnHit:   func(key string) { m.CacheEvent(name, "hit") },
				OnMiss:  func(key string) { m.CacheEvent(name, "miss") },
				OnEvict: func(key string) { m.CacheEvent(name, "evict") },
			},
		),
		executor: executor,
		filterer: NewFilterer(),
		metrics:  m,
	}
}

func (g *Guarded) Name() string  { return g.cfg.Name }
func (g *Guarded) Limit() int    { return g.cfg.Settings.Limit }
func (g *Guarded) Trusted() bool { return g.cfg.Trusted }

// Search returns at most limit items for query, served from cache when a
// fresh result exists. A non-positive limit uses the configured one.
func (g *Guarded) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	if limit <= 0 {
		limit = g.Limit()
	}

	start := time.Now()
	key := fmt.Sprintf("%s:%s:%d", g.cfg.Name, query, limit)

	items, err := g.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]content.Item, error) {
		return g.fetch(ctx, query, limit)
	})
	if err != nil {
		g.metrics.SourceRequest(g.cfg.Name, "error", time.Since(start))
		return nil, err
	}

	g.metrics.SourceRequest(g.cfg.Name, "success", time.Since(start))
	return items, nil
}

func (g *Guarded) fetch(ctx context.Context, query string, limit int) ([]content.Item, error) {
	var items []content.Item

	operation := fmt.Sprintf("%s search %q", g.cfg.Name, query)
	err := g.executor.Execute(ctx, operation, func(ctx context.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx, g.cfg.TimeoutDuration())
		defer cancel()

		found, err := g.searcher.Search(reqCtx, query, limit)
		if err != nil {
			return err
		}
		items = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	items = g.filterer.Run(items, g.cfg.Filters)
	if len(items) > limit {
		items = items[:limit]
	}

	slog.Debug("Source search completed", "source", g.cfg.Name, "query", query, "items", len(items))

	return items, nil
}

// Reset drops cached results and forgets past admissions.
func (g *Guarded) Reset() {
	g.cache.Clear()
	g.limiter.Reset()
}

func (g *Guarded) Stats() Stats {
	return Stats{
		Name:              g.cfg.Name,
		Kind:              g.cfg.Kind,
		Platform:          g.cfg.Platform,
		Trusted:           g.cfg.Trusted,
		Limit:             g.cfg.Settings.Limit,
		RequestsPerMinute: g.cfg.Settings.RequestsPerMinute,
		InWindow:          g.limiter.InWindow(),
		Cache:             g.cache.Stats(),
	}
}
