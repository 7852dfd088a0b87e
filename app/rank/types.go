package rank

import "github.com/lysyi3m/pulse-comb/app/content"

type Tier string

const (
	TierEstablished Tier = "established"
	TierGrowing     Tier = "growing"
	TierEmerging    Tier = "emerging"
)

// Options controls one ranking pass.
type Options struct {
	// MinTotal is the requested number of targets; at least MinimumTargets are
	// returned when enough relevant candidates exist.
	MinTotal int
	// Keywords define domain relevance. An empty list disables the domain
	// filter.
	Keywords []string
	// PrivilegedOrigin gets at least QuotaFloor targets when it has them.
	PrivilegedOrigin string
	QuotaFloor       int
	// Heuristics defaults to DefaultHeuristics when left zero.
	Heuristics Heuristics
}

// Target is a creator worth engaging with, built from their collected items.
type Target struct {
	Platform              content.Platform   `json:"platform"`
	CreatorHandle         string             `json:"creator_handle"`
	Summary               string             `json:"summary"`
	Permalink             string             `json:"permalink"`
	Origins               content.Origins    `json:"origins"`
	Engagement            content.Engagement `json:"engagement"`
	Verified              bool               `json:"verified"`
	RelevanceScore        int                `json:"relevance_score"`
	Tier                  Tier               `json:"tier"`
	RankReason            string             `json:"rank_reason"`
	Signals               []string           `json:"signals"`
	RecommendedEngagement string             `json:"recommended_engagement"`
	PainPointMatch        string             `json:"pain_point_match"`
}

// Relevance rules recorded in Target.RankReason.
const (
	ReasonHandleMatch       = "handle-keyword"
	ReasonSummaryMultiMatch = "summary-keywords"
	ReasonSummaryMatch      = "summary-keyword"
	ReasonNoDomainFilter    = "no-domain-filter"
)

// Content signals recorded in Target.Signals.
const (
	SignalQuestion    = "question"
	SignalFirstPerson = "first-person"
	SignalFrustration = "frustration"
	SignalWhWord      = "wh-word"
	SignalComments    = "active-discussion"
	SignalLikes       = "liked"
	SignalViews       = "viewed"
)
