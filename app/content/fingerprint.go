package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fingerprintTextLength = 200

// Fingerprint identifies near-identical items from the same creator on the
// same platform. Two items with equal fingerprints are merged during
// aggregation.
func Fingerprint(item Item) string {
	return string(item.Platform) + ":" + item.CreatorHandle + ":" + NormalizeText(item.Text, fingerprintTextLength)
}

// NormalizeText lowercases text, folds diacritics and drops everything that
// is not a letter or digit, returning at most limit runes.
func NormalizeText(text string, limit int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(folded) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		if n == limit {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
