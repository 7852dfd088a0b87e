package quality

import (
	"bytes"
	"encoding/json"
)

// Document is a structured analysis produced from a ranked pool. Only the
// fields the assessor inspects are typed; everything else is kept raw.
type Document struct {
	ContentPerformanceInsights []Insight         `json:"content_performance_insights"`
	AudienceAnalysis           json.RawMessage   `json:"audience_analysis,omitempty"`
	StrategicRecommendations   []Recommendation  `json:"strategic_recommendations"`
	AutomationSpots            []json.RawMessage `json:"automation_spots"`
	NextSteps                  []NextStep        `json:"next_steps"`
	EngagementTargets          []json.RawMessage `json:"engagement_targets"`
	TopTalkingPoints           []json.RawMessage `json:"top_talking_points"`
}

type Insight struct {
	Insight            string            `json:"insight"`
	SupportingExamples []json.RawMessage `json:"supporting_examples"`
}

type Recommendation struct {
	Recommendation  string `json:"recommendation"`
	Reasoning       string `json:"reasoning"`
	ExpectedOutcome string `json:"expected_outcome"`
}

type NextStep struct {
	Action         string          `json:"action"`
	Priority       json.RawMessage `json:"priority,omitempty"`
	ExpectedImpact string          `json:"expected_impact"`
}

// DomainContext carries the claims an analysis for a domain must not make.
type DomainContext struct {
	ForbiddenClaims []string `json:"forbidden_claims"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

const (
	CategoryCompleteness = "completeness"
	CategoryEvidence     = "evidence"
	CategoryActionable   = "actionability"
	CategoryAlignment    = "alignment"
	CategoryEthics       = "ethics"
)

type Flag struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
}

type Breakdown struct {
	Completeness  int `json:"completeness"`
	Evidence      int `json:"evidence_quality"`
	Actionability int `json:"actionability"`
	Alignment     int `json:"alignment"`
	Ethics        int `json:"ethical_compliance"`
}

type Score struct {
	Overall         int       `json:"overall"`
	Breakdown       Breakdown `json:"breakdown"`
	Flags           []Flag    `json:"flags"`
	Recommendations []string  `json:"recommendations"`
}

func (s Score) Count(severity Severity) int {
	n := 0
	for _, f := range s.Flags {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// present reports whether a raw section holds a value other than null or an
// empty array.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil && len(items) == 0 {
			return false
		}
	}
	return true
}

// truthy mirrors loose truthiness for a raw JSON scalar.
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	default:
		return true
	}
}
