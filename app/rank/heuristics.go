package rank

import (
	"strings"
	"unicode"
)

// Heuristics holds the term lists and weights used to score candidates.
type Heuristics struct {
	HandleBoost       int `yaml:"handle_boost"`
	MultiKeywordBoost int `yaml:"multi_keyword_boost"`
	KeywordBoost      int `yaml:"keyword_boost"`
	IrrelevantPenalty int `yaml:"irrelevant_penalty"`

	BaseScore        int `yaml:"base_score"`
	QuestionBoost    int `yaml:"question_boost"`
	FirstPersonBoost int `yaml:"first_person_boost"`
	FrustrationBoost int `yaml:"frustration_boost"`
	WhWordBoost      int `yaml:"wh_word_boost"`
	CommentsBoost    int `yaml:"comments_boost"`
	LikesBoost       int `yaml:"likes_boost"`
	ViewsBoost       int `yaml:"views_boost"`

	CommentsThreshold int64 `yaml:"comments_threshold"`
	LikesThreshold    int64 `yaml:"likes_threshold"`
	ViewsThreshold    int64 `yaml:"views_threshold"`

	FirstPerson []string `yaml:"first_person"`
	Frustration []string `yaml:"frustration"`
	WhWords     []string `yaml:"wh_words"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		HandleBoost:       30,
		MultiKeywordBoost: 20,
		KeywordBoost:      10,
		IrrelevantPenalty: -20,

		BaseScore:        50,
		QuestionBoost:    20,
		FirstPersonBoost: 15,
		FrustrationBoost: 15,
		WhWordBoost:      10,
		CommentsBoost:    10,
		LikesBoost:       5,
		ViewsBoost:       5,

		CommentsThreshold: 10,
		LikesThreshold:    50,
		ViewsThreshold:    1000,

		FirstPerson: []string{"i", "my", "me", "we", "our"},
		Frustration: []string{"struggle", "stuck", "hard", "issue", "problem", "difficult", "challenge"},
		WhWords:     []string{"how", "what", "why", "when", "where"},
	}
}

// words splits text into lowercase letter/digit runs.
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var inflections = []string{"", "s", "es", "d", "ed", "ing"}

// matchesTerm reports whether word is term or a simple inflection of it, so
// "struggling" and "problems" match "struggle" and "problem".
func matchesTerm(word, term string) bool {
	if word == term {
		return true
	}
	stem := strings.TrimSuffix(term, "e")
	rest, ok := strings.CutPrefix(word, stem)
	if !ok {
		return false
	}
	for _, suffix := range inflections {
		if rest == suffix {
			return true
		}
	}
	return false
}

func containsTerm(ws []string, terms []string) bool {
	for _, w := range ws {
		for _, term := range terms {
			if matchesTerm(w, term) {
				return true
			}
		}
	}
	return false
}

func containsWord(ws []string, list []string) bool {
	for _, w := range ws {
		for _, item := range list {
			if w == item {
				return true
			}
		}
	}
	return false
}
