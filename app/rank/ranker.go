// Package rank turns an aggregated item pool into an ordered list of creators
// worth engaging with.
package rank

import (
	"sort"
	"strings"

	"github.com/lysyi3m/pulse-comb/app/content"
)

// MinimumTargets is the floor on the number of targets returned whenever the
// relevant pool is large enough.
const MinimumTargets = 15

const summaryLength = 300

type Ranker struct{}

func New() *Ranker {
	return &Ranker{}
}

type candidate struct {
	order int
	Target
}

// Rank groups items by creator, drops creators outside the domain, scores
// the rest and selects max(MinTotal, MinimumTargets) of them, honouring the
// privileged-origin quota. The result is sorted by score, highest first, with
// ties kept in first-seen order. Fewer targets are returned when the relevant
// pool is smaller; irrelevant candidates are never used as filler.
func (r *Ranker) Rank(items []content.Item, opts Options) []Target {
	h := opts.Heuristics
	if h.BaseScore == 0 && len(h.WhWords) == 0 {
		h = DefaultHeuristics()
	}

	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	var relevant []*candidate
	for _, c := range extractCandidates(items) {
		boost, reason, ok := relevance(c, keywords, h)
		if !ok {
			continue
		}
		c.RankReason = reason
		c.RelevanceScore, c.Signals = contentScore(c, h)
		c.RelevanceScore += boost
		c.Tier = tierFor(c.Engagement)
		c.RecommendedEngagement, c.PainPointMatch = approach(c.Signals)
		relevant = append(relevant, c)
	}

	selected := selectTargets(relevant, opts)

	targets := make([]Target, len(selected))
	for i, c := range selected {
		targets[i] = c.Target
	}
	return targets
}

// extractCandidates builds one candidate per (platform, creator) in
// first-seen order. The first valid item supplies the summary and permalink;
// origins and engagement are combined across the creator's items.
func extractCandidates(items []content.Item) []*candidate {
	index := make(map[string]*candidate)
	var candidates []*candidate

	for _, item := range items {
		if item.Validate() != nil {
			continue
		}

		key := string(item.Platform) + "\x00" + item.CreatorHandle
		if c, ok := index[key]; ok {
			c.Origins = c.Origins.Union(item.Origins)
			c.Engagement = c.Engagement.Max(item.Engagement)
			c.Verified = c.Verified || item.Verified
			continue
		}

		c := &candidate{
			order: len(candidates),
			Target: Target{
				Platform:      item.Platform,
				CreatorHandle: item.CreatorHandle,
				Summary:       content.Truncate(item.Text, summaryLength),
				Permalink:     item.Permalink,
				Origins:       content.Origins{}.Union(item.Origins),
				Engagement:    item.Engagement,
				Verified:      item.Verified,
			},
		}
		index[key] = c
		candidates = append(candidates, c)
	}

	return candidates
}

// relevance applies the domain rules. It reports false for candidates that
// match no keyword; those are excluded for the rest of the pass.
func relevance(c *candidate, keywords []string, h Heuristics) (int, string, bool) {
	if len(keywords) == 0 {
		return 0, ReasonNoDomainFilter, true
	}

	handle := strings.ToLower(c.CreatorHandle)
	for _, k := range keywords {
		if strings.Contains(handle, k) {
			return h.HandleBoost, ReasonHandleMatch, true
		}
	}

	summary := strings.ToLower(c.Summary)
	matches := 0
	for _, k := range keywords {
		if strings.Contains(summary, k) {
			matches++
		}
	}

	switch {
	case matches >= 2:
		return h.MultiKeywordBoost, ReasonSummaryMultiMatch, true
	case matches == 1:
		return h.KeywordBoost, ReasonSummaryMatch, true
	default:
		return h.IrrelevantPenalty, "", false
	}
}

func contentScore(c *candidate, h Heuristics) (int, []string) {
	score := h.BaseScore
	signals := []string{}
	ws := words(c.Summary)

	add := func(ok bool, boost int, signal string) {
		if ok {
			score += boost
			signals = append(signals, signal)
		}
	}

	add(strings.Contains(c.Summary, "?"), h.QuestionBoost, SignalQuestion)
	add(containsWord(ws, h.FirstPerson), h.FirstPersonBoost, SignalFirstPerson)
	add(containsTerm(ws, h.Frustration), h.FrustrationBoost, SignalFrustration)
	add(containsWord(ws, h.WhWords), h.WhWordBoost, SignalWhWord)
	add(c.Engagement.CommentsOrZero() > h.CommentsThreshold, h.CommentsBoost, SignalComments)
	add(c.Engagement.LikesOrZero() > h.LikesThreshold, h.LikesBoost, SignalLikes)
	add(c.Engagement.ViewsOrZero() > h.ViewsThreshold, h.ViewsBoost, SignalViews)

	return score, signals
}

func tierFor(e content.Engagement) Tier {
	views, likes := e.ViewsOrZero(), e.LikesOrZero()
	switch {
	case views > 100000 || likes > 10000:
		return TierEstablished
	case views > 10000 || likes > 1000:
		return TierGrowing
	default:
		return TierEmerging
	}
}

func approach(signals []string) (string, string) {
	has := func(s string) bool {
		for _, signal := range signals {
			if signal == s {
				return true
			}
		}
		return false
	}

	recommended := "Public comment"
	if has(SignalQuestion) || has(SignalFrustration) {
		recommended = "1:1 reply"
	}

	switch {
	case has(SignalFrustration):
		return recommended, "High-friction workflow pain point"
	case has(SignalQuestion):
		return recommended, "Active learning/seeking help"
	default:
		return recommended, "General interest or shared experience"
	}
}

// selectTargets takes the privileged-origin floor first, then fills the
// remaining slots from everything else by score.
func selectTargets(relevant []*candidate, opts Options) []*candidate {
	byScore := func(cs []*candidate) {
		sort.SliceStable(cs, func(i, j int) bool {
			if cs[i].RelevanceScore != cs[j].RelevanceScore {
				return cs[i].RelevanceScore > cs[j].RelevanceScore
			}
			return cs[i].order < cs[j].order
		})
	}

	want := max(opts.MinTotal, MinimumTargets)

	var privileged, others []*candidate
	for _, c := range relevant {
		if opts.PrivilegedOrigin != "" && c.Origins.Has(opts.PrivilegedOrigin) {
			privileged = append(privileged, c)
		} else {
			others = append(others, c)
		}
	}
	byScore(privileged)

	floor := min(max(opts.QuotaFloor, 0), len(privileged), want)
	selected := append([]*candidate{}, privileged[:floor]...)

	rest := append(others, privileged[floor:]...)
	byScore(rest)
	selected = append(selected, rest[:min(len(rest), want-floor)]...)

	byScore(selected)
	return selected
}
