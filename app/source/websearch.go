package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/pulse-comb/app/content"
)

// WebSearch queries a SearXNG-compatible JSON endpoint. Results can point at
// any site, so platform and creator are inferred from each result URL.
type WebSearch struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

type webSearchResponse struct {
	Results []struct {
		URL           string `json:"url"`
		Title         string `json:"title"`
		Content       string `json:"content"`
		PublishedDate string `json:"publishedDate"`
	} `json:"results"`
}

func newWebSearch(cfg *Config, env Env) (Searcher, error) {
	return &WebSearch{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		client:    env.Client,
		userAgent: env.UserAgent,
	}, nil
}

func (w *WebSearch) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
	}

	data, err := fetch(ctx, w.client, w.userAgent, w.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp webSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]content.Item, 0, min(len(resp.Results), limit))
	for _, result := range resp.Results {
		if len(items) == limit {
			break
		}

		link, err := url.Parse(result.URL)
		if err != nil || link.Host == "" {
			continue
		}

		platform, handle := attribute(link)
		item := content.Item{
			Platform:      platform,
			ExternalID:    resultID(platform, link, result.URL),
			CreatorHandle: handle,
			Text:          strings.TrimSpace(result.Title + "\n\n" + plainText(result.Content)),
			Permalink:     result.URL,
		}
		if published, err := time.Parse(time.RFC3339, result.PublishedDate); err == nil {
			item.PublishedAt = published
		}

		items = append(items, item)
	}

	return items, nil
}

// resultID uses the post id for reddit threads so a result matches the same
// post collected from a feed. Other results are identified by URL.
func resultID(platform content.Platform, link *url.URL, rawURL string) string {
	if platform == content.PlatformReddit {
		if m := commentIDPattern.FindStringSubmatch(link.Path); m != nil {
			return m[1]
		}
	}
	return urlHash(rawURL)
}

// attribute infers the platform and creator handle from a result URL. Search
// results carry no author, so a reddit thread is attributed to its subreddit.
func attribute(link *url.URL) (content.Platform, string) {
	host := strings.TrimPrefix(strings.ToLower(link.Hostname()), "www.")
	segments := strings.FieldsFunc(link.Path, func(r rune) bool { return r == '/' })

	segment := func(i int) string {
		if i < len(segments) {
			return segments[i]
		}
		return ""
	}

	switch {
	case host == "reddit.com" || strings.HasSuffix(host, ".reddit.com"):
		switch segment(0) {
		case "user", "u":
			if name := segment(1); name != "" {
				return content.PlatformReddit, name
			}
		case "r":
			if sub := segment(1); sub != "" {
				return content.PlatformReddit, "r/" + sub
			}
		}
		return content.PlatformReddit, host

	case host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be":
		if first := segment(0); strings.HasPrefix(first, "@") {
			return content.PlatformYouTube, first
		}
		if segment(0) == "channel" || segment(0) == "c" {
			if name := segment(1); name != "" {
				return content.PlatformYouTube, name
			}
		}
		return content.PlatformYouTube, host

	case host == "x.com" || host == "twitter.com":
		if name := segment(0); name != "" {
			return content.PlatformX, name
		}
		return content.PlatformX, host

	case host == "facebook.com" || host == "m.facebook.com":
		if name := segment(0); name != "" && name != "groups" {
			return content.PlatformFacebook, name
		}
		if segment(0) == "groups" && segment(1) != "" {
			return content.PlatformFacebook, "groups/" + segment(1)
		}
		return content.PlatformFacebook, host
	}

	return content.PlatformWeb, host
}

func urlHash(u string) string {
	hash := sha256.Sum256([]byte(u))
	return hex.EncodeToString(hash[:])[:16]
}
