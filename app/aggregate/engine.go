// Package aggregate fans a set of queries out across content sources, merges
// near-duplicate items and orders the pool by quality.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/pulse-comb/app/content"
	"github.com/lysyi3m/pulse-comb/app/metrics"
)

var ErrInvariant = errors.New("aggregation invariant violated")

type Engine struct {
	sources map[string]Source
	workers int
	metrics *metrics.Collector
}

func NewEngine(sources []Source, workers int, m *metrics.Collector) *Engine {
	if workers < 1 {
		workers = 1
	}

	registry := make(map[string]Source, len(sources))
	for _, s := range sources {
		registry[s.Name()] = s
	}

	return &Engine{
		sources: registry,
		workers: workers,
		metrics: m,
	}
}

// Sources returns the registered source names in order.
func (e *Engine) Sources() []string {
	names := make([]string, 0, len(e.sources))
	for name := range e.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type task struct {
	source Source
	name   string
	query  string
}

type outcome struct {
	items []content.Item
	err   error
}

// Aggregate runs one search per (source, query) pair concurrently. A failing
// source is recorded in Result.Failures and never aborts the others. The
// only error returned is ErrInvariant.
func (e *Engine) Aggregate(ctx context.Context, queries map[string][]string) (*Result, error) {
	start := time.Now()

	result := &Result{
		Failures:        []string{},
		PerSourceCounts: make(map[string]int),
	}

	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	sort.Strings(names)

	var tasks []task
	for _, name := range names {
		src, ok := e.sources[name]
		if !ok {
			slog.Warn("No source registered", "source", name)
			result.addFailure(name)
			continue
		}
		for _, query := range queries[name] {
			tasks = append(tasks, task{source: src, name: name, query: query})
		}
	}

	outcomes := make([]outcome, len(tasks))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, t := range tasks {
		g.Go(func() error {
			items, err := t.source.Search(ctx, t.query, t.source.Limit())
			outcomes[i] = outcome{items: items, err: err}
			return nil
		})
	}
	g.Wait()

	var pool []content.Item
	for i, t := range tasks {
		out := outcomes[i]
		if out.err != nil {
			slog.Error("Source search failed", "source", t.name, "query", t.query, "error", out.err)
			result.addFailure(t.name)
			continue
		}

		result.PerSourceCounts[t.name] += len(out.items)

		for _, item := range out.items {
			if err := item.Validate(); err != nil {
				slog.Debug("Item rejected", "source", t.name, "permalink", item.Permalink, "error", err)
				result.Rejected++
				continue
			}

			item.Origins = item.Origins.Union(content.Origins{t.name})
			if t.source.Trusted() {
				item.Verified = true
			}
			pool = append(pool, item)
		}
	}

	items, err := Merge(pool, e.trusted())
	if err != nil {
		return nil, err
	}
	result.Items = items

	e.metrics.Aggregation(time.Since(start), len(result.Items), result.Failures)

	slog.Info("Aggregation completed",
		"sources", len(names),
		"tasks", len(tasks),
		"items", len(result.Items),
		"failures", len(result.Failures),
		"rejected", result.Rejected,
		"duration", time.Since(start))

	return result, nil
}

func (e *Engine) trusted() map[string]bool {
	trusted := make(map[string]bool)
	for name, s := range e.sources {
		if s.Trusted() {
			trusted[name] = true
		}
	}
	return trusted
}

func (r *Result) addFailure(name string) {
	if !slices.Contains(r.Failures, name) {
		r.Failures = append(r.Failures, name)
	}
}

// Merge collapses observations of the same post, scores the survivors and
// sorts them by score, highest first. Items are first collapsed by platform
// and external id, then by fingerprint. The first occurrence keeps its
// position in the merge order and its non-engagement fields, except that a
// community handle gives way to a known author. Every item must carry at
// least one origin.
func Merge(items []content.Item, trusted map[string]bool) ([]content.Item, error) {
	merged := collapse(items, func(item content.Item) string {
		if item.ExternalID == "" {
			return ""
		}
		return string(item.Platform) + ":" + item.ExternalID
	})
	merged = collapse(merged, content.Fingerprint)

	for i := range merged {
		if len(merged[i].Origins) == 0 {
			return nil, fmt.Errorf("%w: item %s has no origin", ErrInvariant, merged[i].Permalink)
		}
		merged[i].QualityScore = Score(merged[i], trusted)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].QualityScore > merged[j].QualityScore
	})

	return merged, nil
}

// collapse merges items with equal keys into their first occurrence. Items
// with an empty key are kept as they are.
func collapse(items []content.Item, key func(content.Item) string) []content.Item {
	index := make(map[string]int, len(items))
	merged := make([]content.Item, 0, len(items))

	for _, item := range items {
		k := key(item)
		if k == "" {
			merged = append(merged, item)
			continue
		}

		i, seen := index[k]
		if !seen {
			index[k] = len(merged)
			merged = append(merged, item)
			continue
		}

		existing := &merged[i]
		existing.Origins = existing.Origins.Union(item.Origins)
		existing.Engagement = existing.Engagement.Max(item.Engagement)
		existing.Verified = existing.Verified || item.Verified
		if existing.HasCommunityHandle() && item.CreatorHandle != "" && !item.HasCommunityHandle() {
			existing.CreatorHandle = item.CreatorHandle
		}
	}

	return merged
}
