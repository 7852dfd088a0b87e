package aggregate

import (
	"context"

	"github.com/lysyi3m/pulse-comb/app/content"
)

// Source is the view of a content source the engine needs.
// *source.Guarded satisfies it.
type Source interface {
	Name() string
	Limit() int
	Trusted() bool
	Search(ctx context.Context, query string, limit int) ([]content.Item, error)
}

type Result struct {
	Items           []content.Item `json:"items"`
	Failures        []string       `json:"failures"`
	PerSourceCounts map[string]int `json:"per_source_counts"`
	Rejected        int            `json:"rejected"`
}

// Degraded reports that no source produced a usable item. This is a valid
// outcome rather than an error; callers surface it as "no data".
func (r *Result) Degraded() bool {
	return len(r.Items) == 0
}
