package aggregate

import (
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/pulse-comb/app/content"
)

// Score rates an item from 0 to 100. Corroboration (verification, a trusted
// origin, several origins) outweighs raw engagement.
func Score(item content.Item, trusted map[string]bool) int {
	score := 50

	if item.Verified || item.Origins.HasAny(trusted) {
		score += 30
	}
	if len(item.Origins) > 1 {
		score += 20
	}

	if item.Engagement.LikesOrZero() > 50 {
		score += 10
	}
	if item.Engagement.CommentsOrZero() > 10 {
		score += 10
	}
	if item.Engagement.ViewsOrZero() > 1000 {
		score += 5
	}

	if utf8.RuneCountInString(item.Text) > 200 {
		score += 5
	}
	if strings.Contains(item.Text, "?") {
		score += 5
	}

	return max(0, min(100, score))
}
