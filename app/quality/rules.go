package quality

// Rules holds the thresholds and term lists used by the assessor.
type Rules struct {
	MinInsights         int
	RecommendedInsights int
	MinTargets          int
	RecommendedTargets  int

	MaxPercentClaims  int
	MaxSuperlatives   int
	SuperlativeGroups [][]string
	MinExamples       int
	SupportedRatio    float64

	MinRecommendationLength int
	MinReasoningLength      int
	MinOutcomeLength        int
	MinImpactLength         int

	ProblematicTerms []string
	PIITerms         []string
}

func DefaultRules() Rules {
	return Rules{
		MinInsights:         3,
		RecommendedInsights: 5,
		MinTargets:          10,
		RecommendedTargets:  15,

		MaxPercentClaims: 10,
		MaxSuperlatives:  3,
		SuperlativeGroups: [][]string{
			{"best", "greatest", "leading", "top", "#1", "number one"},
			{"guaranteed", "certain", "definitely", "absolutely"},
			{"always", "never", "everyone", "nobody", "all", "none"},
		},
		MinExamples:    3,
		SupportedRatio: 0.6,

		MinRecommendationLength: 50,
		MinReasoningLength:      50,
		MinOutcomeLength:        30,
		MinImpactLength:         20,

		ProblematicTerms: []string{
			"guys", "man-hours", "master/slave", "blacklist", "whitelist",
			"crazy", "insane", "lame", "dumb", "stupid",
		},
		PIITerms: []string{"email", "phone"},
	}
}
