// Package quality audits a structured analysis document and scores it on
// completeness, evidence, actionability, domain alignment and ethics.
package quality

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var percentPattern = regexp.MustCompile(`\b\d+%`)

type Assessor struct {
	rules        Rules
	superlatives []*regexp.Regexp
}

func New() *Assessor {
	return NewWithRules(DefaultRules())
}

func NewWithRules(rules Rules) *Assessor {
	a := &Assessor{rules: rules}
	for _, group := range rules.SuperlativeGroups {
		quoted := make([]string, len(group))
		for i, term := range group {
			quoted[i] = regexp.QuoteMeta(term)
		}
		a.superlatives = append(a.superlatives, regexp.MustCompile(`(?i)\b(?:`+strings.Join(quoted, "|")+`)\b`))
	}
	return a
}

// AssessJSON scores a raw document. Input that does not decode is scored as
// an empty document with an additional error flag.
func (a *Assessor) AssessJSON(raw []byte, domain *DomainContext) Score {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		score := a.assess(&Document{}, "{}", domain)
		score.Flags = append([]Flag{{
			Severity: SeverityError,
			Category: CategoryCompleteness,
			Message:  fmt.Sprintf("Document could not be parsed: %v", err),
		}}, score.Flags...)
		score.Recommendations = recommendations(score.Flags, score.Overall)
		return score
	}
	return a.assess(&doc, string(raw), domain)
}

// Assess scores doc. A nil doc is treated as empty.
func (a *Assessor) Assess(doc *Document, domain *DomainContext) Score {
	if doc == nil {
		doc = &Document{}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		raw = []byte("{}")
	}
	return a.assess(doc, string(raw), domain)
}

func (a *Assessor) assess(doc *Document, text string, domain *DomainContext) Score {
	var flags []Flag

	breakdown := Breakdown{
		Completeness:  a.completeness(doc, &flags),
		Evidence:      a.evidence(doc, text, &flags),
		Actionability: a.actionability(doc, &flags),
		Alignment:     a.alignment(text, domain, &flags),
		Ethics:        a.ethics(text, &flags),
	}

	overall := breakdown.Completeness + breakdown.Evidence + breakdown.Actionability + breakdown.Alignment + breakdown.Ethics

	if flags == nil {
		flags = []Flag{}
	}

	return Score{
		Overall:         overall,
		Breakdown:       breakdown,
		Flags:           flags,
		Recommendations: recommendations(flags, overall),
	}
}

// completeness scores 0-20.
func (a *Assessor) completeness(doc *Document, flags *[]Flag) int {
	score := 0

	sections := []struct {
		name    string
		present bool
	}{
		{"content_performance_insights", len(doc.ContentPerformanceInsights) > 0},
		{"audience_analysis", present(doc.AudienceAnalysis)},
		{"strategic_recommendations", len(doc.StrategicRecommendations) > 0},
		{"engagement_targets", len(doc.EngagementTargets) > 0},
		{"top_talking_points", len(doc.TopTalkingPoints) > 0},
	}

	var missing []string
	for _, s := range sections {
		if !s.present {
			missing = append(missing, s.name)
		}
	}

	if len(missing) == 0 {
		score += 10
	} else {
		*flags = append(*flags, Flag{
			Severity: SeverityError,
			Category: CategoryCompleteness,
			Message:  "Missing or empty sections: " + strings.Join(missing, ", "),
		})
	}

	score += a.countCheck(len(doc.ContentPerformanceInsights), a.rules.RecommendedInsights, a.rules.MinInsights, "content insights", flags)
	score += a.countCheck(len(doc.EngagementTargets), a.rules.RecommendedTargets, a.rules.MinTargets, "engagement targets", flags)

	return score
}

func (a *Assessor) countCheck(n, recommended, minimum int, what string, flags *[]Flag) int {
	switch {
	case n >= recommended:
		return 5
	case n >= minimum:
		*flags = append(*flags, Flag{
			Severity: SeverityWarning,
			Category: CategoryCompleteness,
			Message:  fmt.Sprintf("Only %d %s (%d+ recommended)", n, what, recommended),
		})
		return 3
	default:
		*flags = append(*flags, Flag{
			Severity: SeverityError,
			Category: CategoryCompleteness,
			Message:  fmt.Sprintf("Insufficient %s: %d (minimum %d)", what, n, minimum),
		})
		return 0
	}
}

// evidence starts at 25 and deducts for unsupported claims.
func (a *Assessor) evidence(doc *Document, text string, flags *[]Flag) int {
	score := 25

	if n := len(percentPattern.FindAllString(text, -1)); n > a.rules.MaxPercentClaims {
		score -= 5
		*flags = append(*flags, Flag{
			Severity: SeverityWarning,
			Category: CategoryEvidence,
			Message:  fmt.Sprintf("High number of percentage claims (%d) - verify all are sourced", n),
		})
	}

	for _, pattern := range a.superlatives {
		if n := len(pattern.FindAllString(text, -1)); n > a.rules.MaxSuperlatives {
			score -= 3
			*flags = append(*flags, Flag{
				Severity: SeverityWarning,
				Category: CategoryEvidence,
				Message:  fmt.Sprintf("Multiple unsupported superlatives or absolutes detected (%d)", n),
			})
		}
	}

	supported := 0
	for i, insight := range doc.ContentPerformanceInsights {
		if len(insight.SupportingExamples) >= a.rules.MinExamples {
			supported++
			continue
		}
		*flags = append(*flags, Flag{
			Severity: SeverityInfo,
			Category: CategoryEvidence,
			Message:  fmt.Sprintf("Insight #%d has insufficient supporting examples", i+1),
			Location: fmt.Sprintf("content_performance_insights[%d]", i),
		})
	}

	if n := len(doc.ContentPerformanceInsights); n > 0 && float64(supported)/float64(n) < a.rules.SupportedRatio {
		score -= 5
		*flags = append(*flags, Flag{
			Severity: SeverityWarning,
			Category: CategoryEvidence,
			Message:  fmt.Sprintf("Less than %.0f%% of insights have adequate supporting examples", a.rules.SupportedRatio*100),
		})
	}

	return max(0, score)
}

// actionability scores 0-20: half for specific recommendations, half for
// well-defined next steps.
func (a *Assessor) actionability(doc *Document, flags *[]Flag) int {
	score := 0.0

	specific := 0
	for i, rec := range doc.StrategicRecommendations {
		if utf8.RuneCountInString(rec.Recommendation) > a.rules.MinRecommendationLength &&
			utf8.RuneCountInString(rec.Reasoning) > a.rules.MinReasoningLength &&
			utf8.RuneCountInString(rec.ExpectedOutcome) > a.rules.MinOutcomeLength {
			specific++
			continue
		}
		*flags = append(*flags, Flag{
			Severity: SeverityInfo,
			Category: CategoryActionable,
			Message:  fmt.Sprintf("Recommendation #%d could be more specific", i+1),
			Location: fmt.Sprintf("strategic_recommendations[%d]", i),
		})
	}
	if n := len(doc.StrategicRecommendations); n > 0 {
		score += math.Min(10, float64(specific)/float64(n)*10)
	}

	defined := 0
	for _, step := range doc.NextSteps {
		if truthy(step.Priority) && utf8.RuneCountInString(step.ExpectedImpact) > a.rules.MinImpactLength {
			defined++
		}
	}
	if n := len(doc.NextSteps); n > 0 {
		score += math.Min(10, float64(defined)/float64(n)*10)
	}

	return int(math.Round(score))
}

// alignment scores 0-20, or a neutral 15 when no domain context is given.
func (a *Assessor) alignment(text string, domain *DomainContext, flags *[]Flag) int {
	if domain == nil {
		return 15
	}

	score := 20
	lower := strings.ToLower(text)

	var found []string
	for _, claim := range domain.ForbiddenClaims {
		if claim != "" && strings.Contains(lower, strings.ToLower(claim)) {
			found = append(found, claim)
		}
	}

	if len(found) > 0 {
		score -= 10
		*flags = append(*flags, Flag{
			Severity: SeverityError,
			Category: CategoryAlignment,
			Message:  "Contains forbidden claims: " + strings.Join(found, ", "),
		})
	}

	return max(0, score)
}

// ethics starts at 15 and deducts for non-inclusive language.
func (a *Assessor) ethics(text string, flags *[]Flag) int {
	score := 15
	lower := strings.ToLower(text)

	for _, term := range a.rules.ProblematicTerms {
		if strings.Contains(lower, term) {
			score -= 2
			*flags = append(*flags, Flag{
				Severity: SeverityWarning,
				Category: CategoryEthics,
				Message:  fmt.Sprintf("Contains potentially non-inclusive term: %q", term),
			})
		}
	}

	for _, term := range a.rules.PIITerms {
		if strings.Contains(lower, term) {
			*flags = append(*flags, Flag{
				Severity: SeverityInfo,
				Category: CategoryEthics,
				Message:  "Contains potential PII - verify no personal information is exposed",
			})
			break
		}
	}

	return max(0, score)
}

func recommendations(flags []Flag, overall int) []string {
	recs := []string{}

	var errors []string
	categories := make(map[string]bool)
	for _, f := range flags {
		if f.Severity == SeverityError {
			errors = append(errors, f.Message)
		}
		categories[f.Category] = true
	}

	if len(errors) > 0 {
		recs = append(recs, "Critical: Address all errors before using this analysis")
		recs = append(recs, errors...)
	}

	switch {
	case overall < 50:
		recs = append(recs, "Quality score is low - consider re-running the analysis with a refined prompt")
	case overall < 70:
		recs = append(recs, "Quality is moderate - review warnings before proceeding")
	case overall >= 85:
		recs = append(recs, "Excellent quality - analysis is ready for use")
	}

	if categories[CategoryEvidence] {
		recs = append(recs, "Add more supporting examples and verify all statistics")
	}
	if categories[CategoryActionable] {
		recs = append(recs, "Make recommendations more specific and actionable")
	}
	if categories[CategoryEthics] {
		recs = append(recs, "Review content for inclusive language and privacy concerns")
	}

	return recs
}
