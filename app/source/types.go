package source

import (
	"context"
	"time"

	"github.com/lysyi3m/pulse-comb/app/cache"
	"github.com/lysyi3m/pulse-comb/app/content"
	"github.com/lysyi3m/pulse-comb/app/retry"
)

// Searcher is implemented by every source kind. Implementations talk to a
// single upstream and return normalized items; rate limiting, caching and
// retries are layered on by Guarded.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]content.Item, error)
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Kind     string         `yaml:"kind"`
	Platform string         `yaml:"platform"`
	URL      string         `yaml:"url"`
	Trusted  bool           `yaml:"trusted"`
	Settings ConfigSettings `yaml:"settings"`
	Options  ConfigOptions  `yaml:"options"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled           bool `yaml:"enabled"`
	Limit             int  `yaml:"limit"`
	Timeout           int  `yaml:"timeout"` // seconds
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	CacheTTL          int  `yaml:"cache_ttl"` // seconds
	CacheMaxEntries   int  `yaml:"cache_max_entries"`
	MaxRetries        *int `yaml:"max_retries"`
	BaseDelay         int  `yaml:"base_delay"` // milliseconds
	MaxDelay          int  `yaml:"max_delay"`  // milliseconds
	ExtractContent    bool `yaml:"extract_content"`
}

type ConfigOptions struct {
	Feeds     []string `yaml:"feeds"`       // rss: values substituted for {feed}
	APIKeyEnv string   `yaml:"api_key_env"` // youtube
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Settings.Timeout) * time.Second
}

func (c *Config) RetryConfig() retry.Config {
	cfg := retry.DefaultConfig()
	if c.Settings.BaseDelay > 0 {
		cfg.BaseDelay = time.Duration(c.Settings.BaseDelay) * time.Millisecond
	}
	if c.Settings.MaxDelay > 0 {
		cfg.MaxDelay = time.Duration(c.Settings.MaxDelay) * time.Millisecond
	}
	if c.Settings.MaxRetries != nil {
		cfg.MaxRetries = *c.Settings.MaxRetries
	}
	return cfg
}

// Stats describes a source's configuration and current load.
type Stats struct {
	Name              string      `json:"name"`
	Kind              string      `json:"kind"`
	Platform          string      `json:"platform"`
	Trusted           bool        `json:"trusted"`
	Limit             int         `json:"limit"`
	RequestsPerMinute int         `json:"requests_per_minute"`
	InWindow          int         `json:"in_window"`
	Cache             cache.Stats `json:"cache"`
}
