package source

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/lysyi3m/pulse-comb/app/content"
)

const extractBelowLength = 200

var (
	commentIDPattern = regexp.MustCompile(`/comments/([a-z0-9]+)`)
	pointsPattern    = regexp.MustCompile(`(?i)(\d+)\s+points?`)
	commentsPattern  = regexp.MustCompile(`(?i)(\d+)\s+comments?`)
)

// RSS searches feeds built from a URL template. {feed} is replaced by each
// configured feed and {query} by the escaped query, e.g.
// https://www.reddit.com/r/{feed}/search.rss?q={query}&sort=new&restrict_sr=on
type RSS struct {
	platform    content.Platform
	urlTemplate string
	feeds       []string
	client      *http.Client
	userAgent   string
	extractor   *Extractor
}

func newRSS(cfg *Config, env Env) (Searcher, error) {
	if !strings.Contains(cfg.URL, "{query}") {
		return nil, fmt.Errorf("rss url must contain a {query} placeholder")
	}

	r := &RSS{
		platform:    content.Platform(cfg.Platform),
		urlTemplate: cfg.URL,
		feeds:       cfg.Options.Feeds,
		client:      env.Client,
		userAgent:   env.UserAgent,
	}
	if cfg.Settings.ExtractContent {
		r.extractor = NewExtractor(env.Client, env.UserAgent, rate.NewLimiter(rate.Every(time.Second), 1))
	}
	return r, nil
}

func (r *RSS) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	feeds := r.feeds
	if len(feeds) == 0 {
		feeds = []string{""}
	}

	var items []content.Item
	var errs []error
	for _, feed := range feeds {
		found, err := r.searchFeed(ctx, feed, query)
		if err != nil {
			slog.Warn("Feed search failed", "feed", feed, "query", query, "error", err)
			errs = append(errs, err)
			continue
		}
		items = append(items, found...)
	}

	if len(errs) == len(feeds) {
		return nil, errs[len(errs)-1]
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}

	if r.extractor != nil {
		r.extractShortItems(ctx, items)
	}

	return items, nil
}

func (r *RSS) searchFeed(ctx context.Context, feed, query string) ([]content.Item, error) {
	feedURL := strings.NewReplacer(
		"{feed}", url.PathEscape(feed),
		"{query}", url.QueryEscape(query),
	).Replace(r.urlTemplate)

	data, err := fetch(ctx, r.client, r.userAgent, feedURL)
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]content.Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		items = append(items, r.normalizeItem(item))
	}
	return items, nil
}

func (r *RSS) normalizeItem(item *gofeed.Item) content.Item {
	body := cmp.Or(item.Content, item.Description)

	normalized := content.Item{
		Platform:      r.platform,
		ExternalID:    externalID(item),
		CreatorHandle: authorHandle(item),
		Text:          strings.TrimSpace(item.Title + "\n\n" + plainText(body)),
		Permalink:     item.Link,
		Engagement: content.Engagement{
			Likes:    matchCount(pointsPattern, body),
			Comments: matchCount(commentsPattern, body),
		},
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = *item.UpdatedParsed
	}

	return normalized
}

func (r *RSS) extractShortItems(ctx context.Context, items []content.Item) {
	for i := range items {
		if utf8.RuneCountInString(items[i].Text) >= extractBelowLength || items[i].Permalink == "" {
			continue
		}

		text, err := r.extractor.Extract(ctx, items[i].Permalink)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			slog.Debug("Content extraction skipped", "permalink", items[i].Permalink, "error", err)
			continue
		}
		if utf8.RuneCountInString(text) > utf8.RuneCountInString(items[i].Text) {
			items[i].Text = text
		}
	}
}

func externalID(item *gofeed.Item) string {
	if m := commentIDPattern.FindStringSubmatch(item.Link); m != nil {
		return m[1]
	}
	return cmp.Or(item.GUID, item.Link)
}

func authorHandle(item *gofeed.Item) string {
	var name string
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		name = item.Authors[0].Name
	} else if item.Author != nil {
		name = item.Author.Name
	}

	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/u/")
	name = strings.TrimPrefix(name, "u/")
	return name
}

func matchCount(pattern *regexp.Regexp, text string) *int64 {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil
	}
	return content.Count(n)
}
