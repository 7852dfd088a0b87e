package api

import (
	"context"
	"time"

	"github.com/lysyi3m/pulse-comb/app/aggregate"
	"github.com/lysyi3m/pulse-comb/app/content"
	"github.com/lysyi3m/pulse-comb/app/database"
	"github.com/lysyi3m/pulse-comb/app/profile"
	"github.com/lysyi3m/pulse-comb/app/quality"
	"github.com/lysyi3m/pulse-comb/app/rank"
	"github.com/lysyi3m/pulse-comb/app/source"
)

type AggregatorInterface interface {
	Aggregate(ctx context.Context, queries map[string][]string) (*aggregate.Result, error)
	Sources() []string
}

type RankerInterface interface {
	Rank(items []content.Item, opts rank.Options) []rank.Target
}

type RunStoreInterface interface {
	SaveRun(run *database.Run) error
	GetRun(id string) (*database.Run, error)
	ListRuns(limit int) ([]database.Run, error)
	Prune(keep int) (int, error)
}

type SourceStatsInterface interface {
	Name() string
	Stats() source.Stats
	Reset()
}

var (
	_ AggregatorInterface  = (*aggregate.Engine)(nil)
	_ RankerInterface      = (*rank.Ranker)(nil)
	_ RunStoreInterface    = (*database.RunRepository)(nil)
	_ SourceStatsInterface = (*source.Guarded)(nil)
)

// Defaults are the service-wide values a request or profile may override.
type Defaults struct {
	Profile          string
	MinTargets       int
	PrivilegedOrigin string
	QuotaFloor       int
	Timeout          time.Duration
	RunHistory       int
}

type Handler struct {
	aggregator AggregatorInterface
	ranker     RankerInterface
	assessor   *quality.Assessor
	profiles   *profile.Store
	runs       RunStoreInterface
	sources    []SourceStatsInterface
	defaults   Defaults
	version    string
}

type PulseRequest struct {
	Queries    map[string][]string `json:"queries"`
	Profile    string              `json:"profile"`
	MinTargets int                 `json:"min_targets"`
}

type PulseResponse struct {
	RunID           string         `json:"run_id"`
	Status          string         `json:"status"`
	Profile         string         `json:"profile"`
	GeneratedAt     time.Time      `json:"generated_at"`
	Duration        string         `json:"duration"`
	PoolSize        int            `json:"pool_size"`
	Rejected        int            `json:"rejected"`
	Failures        []string       `json:"failures"`
	PerSourceCounts map[string]int `json:"per_source_counts"`
	Targets         []rank.Target  `json:"targets"`
	Items           []content.Item `json:"items"`
}

type AssessResponse struct {
	Score      quality.Score `json:"score"`
	Grade      string        `json:"grade"`
	ReportCard string        `json:"report_card"`
}
