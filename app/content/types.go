package content

import (
	"slices"
	"strings"
	"time"
)

type Platform string

const (
	PlatformReddit   Platform = "reddit"
	PlatformYouTube  Platform = "youtube"
	PlatformFacebook Platform = "facebook"
	PlatformX        Platform = "x"
	PlatformWeb      Platform = "web"
)

// Item is one normalized post or comment collected from a source.
type Item struct {
	Platform      Platform   `json:"platform"`
	ExternalID    string     `json:"external_id"`
	CreatorHandle string     `json:"creator_handle"`
	Text          string     `json:"text"`
	Permalink     string     `json:"permalink"`
	PublishedAt   time.Time  `json:"published_at"`
	Engagement    Engagement `json:"engagement"`
	Origins       Origins    `json:"origins"`
	Verified      bool       `json:"verified"`
	QualityScore  int        `json:"quality_score"`
}

// HasCommunityHandle reports whether the item is attributed to a subreddit or
// group because its author is unknown.
func (i Item) HasCommunityHandle() bool {
	return strings.HasPrefix(i.CreatorHandle, "r/") || strings.HasPrefix(i.CreatorHandle, "groups/")
}

// Origins is a set of source names kept in first-seen order.
type Origins []string

func (o Origins) Has(name string) bool {
	return slices.Contains(o, name)
}

// HasAny reports whether any of names is present.
func (o Origins) HasAny(names map[string]bool) bool {
	for _, name := range o {
		if names[name] {
			return true
		}
	}
	return false
}

// Union returns a new set with the members of o followed by the members of
// other that o did not already contain.
func (o Origins) Union(other Origins) Origins {
	out := make(Origins, 0, len(o)+len(other))
	for _, name := range o {
		if !out.Has(name) {
			out = append(out, name)
		}
	}
	for _, name := range other {
		if !out.Has(name) {
			out = append(out, name)
		}
	}
	return out
}
