package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/pulse-comb/app/content"
)

// maxResultsLimit is the largest page the Data API search endpoint accepts.
const maxResultsLimit = 50

// YouTube searches videos through the Data API and enriches them with
// view, like and comment counts.
type YouTube struct {
	platform  content.Platform
	baseURL   string
	apiKey    string
	client    *http.Client
	userAgent string
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type youtubeVideosResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func newYouTube(cfg *Config, env Env) (Searcher, error) {
	keyEnv := cfg.Options.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "YOUTUBE_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", keyEnv)
	}

	return &YouTube{
		platform:  content.Platform(cfg.Platform),
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    apiKey,
		client:    env.Client,
		userAgent: env.UserAgent,
	}, nil
}

func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]content.Item, error) {
	params := url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"order":      {"relevance"},
		"maxResults": {strconv.Itoa(min(limit, maxResultsLimit))},
		"q":          {query},
		"key":        {y.apiKey},
	}

	data, err := fetch(ctx, y.client, y.userAgent, y.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var search youtubeSearchResponse
	if err := json.Unmarshal(data, &search); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]content.Item, 0, len(search.Items))
	ids := make([]string, 0, len(search.Items))
	for _, video := range search.Items {
		if video.ID.VideoID == "" {
			continue
		}

		item := content.Item{
			Platform:      y.platform,
			ExternalID:    video.ID.VideoID,
			CreatorHandle: video.Snippet.ChannelTitle,
			Text:          strings.TrimSpace(video.Snippet.Title + "\n\n" + video.Snippet.Description),
			Permalink:     "https://www.youtube.com/watch?v=" + video.ID.VideoID,
		}
		if published, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
			item.PublishedAt = published
		}

		items = append(items, item)
		ids = append(ids, video.ID.VideoID)
	}

	if len(ids) == 0 {
		return items, nil
	}

	stats, err := y.statistics(ctx, ids)
	if err != nil {
		slog.Warn("Video statistics unavailable", "query", query, "error", err)
		return items, nil
	}
	for i := range items {
		if engagement, ok := stats[items[i].ExternalID]; ok {
			items[i].Engagement = engagement
		}
	}

	return items, nil
}

func (y *YouTube) statistics(ctx context.Context, ids []string) (map[string]content.Engagement, error) {
	params := url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(ids, ",")},
		"key":  {y.apiKey},
	}

	data, err := fetch(ctx, y.client, y.userAgent, y.baseURL+"/videos?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var videos youtubeVideosResponse
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos response: %w", err)
	}

	stats := make(map[string]content.Engagement, len(videos.Items))
	for _, video := range videos.Items {
		stats[video.ID] = content.Engagement{
			Views:    parseCount(video.Statistics.ViewCount),
			Likes:    parseCount(video.Statistics.LikeCount),
			Comments: parseCount(video.Statistics.CommentCount),
		}
	}
	return stats, nil
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return content.Count(n)
}
