package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/lysyi3m/pulse-comb/app/metrics"
)

// Env carries the shared dependencies handed to every source kind.
type Env struct {
	Client    *http.Client
	UserAgent string
}

// Builder constructs the Searcher for one source kind.
type Builder func(cfg *Config, env Env) (Searcher, error)

var (
	buildersMu sync.RWMutex
	builders   = map[string]Builder{
		"rss":       newRSS,
		"youtube":   newYouTube,
		"websearch": newWebSearch,
	}
)

// Register adds or replaces a source kind. Configs naming the kind are
// rejected until it is registered.
func Register(kind string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	builders[kind] = b
}

func lookupBuilder(kind string) (Builder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	b, ok := builders[kind]
	return b, ok
}

func Build(cfg *Config, env Env, m *metrics.Collector) (*Guarded, error) {
	build, ok := lookupBuilder(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown source kind: %s", cfg.Kind)
	}

	if env.Client == nil {
		env.Client = &http.Client{}
	}

	searcher, err := build(cfg, env)
	if err != nil {
		return nil, fmt.Errorf("failed to build source %s: %w", cfg.Name, err)
	}

	return NewGuarded(cfg, searcher, m), nil
}

// BuildAll builds every config, skipping (and logging) those that fail.
func BuildAll(configs []*Config, env Env, m *metrics.Collector) []*Guarded {
	sources := make([]*Guarded, 0, len(configs))
	for _, cfg := range configs {
		g, err := Build(cfg, env, m)
		if err != nil {
			slog.Error("Source disabled", "source", cfg.Name, "error", err)
			continue
		}
		sources = append(sources, g)
	}
	return sources
}
