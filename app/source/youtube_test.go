package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lysyi3m/pulse-comb/app/retry"
)

func TestYouTubeSearch(t *testing.T) {
	t.Setenv("TEST_YT_KEY", "secret")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"items": [
				{"id": {"videoId": "vid1"}, "snippet": {"title": "Color grading in 10 minutes", "description": "A fast workflow", "channelTitle": "GradeLab", "publishedAt": "2025-02-01T12:00:00Z"}},
				{"id": {"kind": "youtube#channel"}, "snippet": {"title": "Channel result"}}
			]}`))
		case "/videos":
			w.Write([]byte(`{"items": [{"id": "vid1", "statistics": {"viewCount": "150000", "likeCount": "4200", "commentCount": "310"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := &Config{Name: "youtube", Kind: "youtube", Platform: "youtube", URL: server.URL, Options: ConfigOptions{APIKeyEnv: "TEST_YT_KEY"}}
	searcher, err := newYouTube(cfg, Env{Client: server.Client()})
	if err != nil {
		t.Fatal(err)
	}

	items, err := searcher.Search(context.Background(), "color grading", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 video, got %d", len(items))
	}

	item := items[0]
	if item.Permalink != "https://www.youtube.com/watch?v=vid1" {
		t.Errorf("Unexpected permalink '%s'", item.Permalink)
	}
	if item.CreatorHandle != "GradeLab" {
		t.Errorf("Expected handle 'GradeLab', got '%s'", item.CreatorHandle)
	}
	if item.Engagement.ViewsOrZero() != 150000 || item.Engagement.LikesOrZero() != 4200 || item.Engagement.CommentsOrZero() != 310 {
		t.Errorf("Unexpected engagement: views=%d likes=%d comments=%d",
			item.Engagement.ViewsOrZero(), item.Engagement.LikesOrZero(), item.Engagement.CommentsOrZero())
	}
	if item.Engagement.Shares != nil {
		t.Error("Expected shares to stay unknown")
	}
	if item.PublishedAt.IsZero() {
		t.Error("Expected published time to be parsed")
	}
}

func TestYouTubeForbiddenIsFatal(t *testing.T) {
	t.Setenv("TEST_YT_KEY", "wrong")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	cfg := &Config{Name: "youtube", Kind: "youtube", URL: server.URL, Options: ConfigOptions{APIKeyEnv: "TEST_YT_KEY"}}
	searcher, err := newYouTube(cfg, Env{Client: server.Client()})
	if err != nil {
		t.Fatal(err)
	}

	_, err = searcher.Search(context.Background(), "q", 5)
	var statusErr *retry.StatusError
	if !errors.As(err, &statusErr) || retry.Classify(err) != retry.Fatal {
		t.Errorf("Expected fatal status error, got %v", err)
	}
}

func TestYouTubeRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_YT_MISSING", "")

	cfg := &Config{Name: "youtube", Kind: "youtube", URL: "http://localhost", Options: ConfigOptions{APIKeyEnv: "TEST_YT_MISSING"}}
	if _, err := newYouTube(cfg, Env{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestYouTubeErrorsDoNotExposeKey(t *testing.T) {
	t.Setenv("TEST_YT_KEY", "SECRET-KEY-123")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	cfg := &Config{Name: "youtube", Kind: "youtube", URL: server.URL, Options: ConfigOptions{APIKeyEnv: "TEST_YT_KEY"}}
	searcher, err := newYouTube(cfg, Env{Client: server.Client()})
	if err != nil {
		t.Fatal(err)
	}

	_, err = searcher.Search(context.Background(), "color grading", 5)
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Errorf("Status error exposes API key: %v", err)
	}
	if !strings.Contains(err.Error(), "/search") {
		t.Errorf("Expected error to name the endpoint path, got %v", err)
	}

	server.Close()

	_, err = searcher.Search(context.Background(), "color grading", 5)
	if err == nil {
		t.Fatal("Expected error for closed server")
	}
	if strings.Contains(err.Error(), "SECRET-KEY-123") {
		t.Errorf("Transport error exposes API key: %v", err)
	}
}

func TestYouTubeClampsMaxResults(t *testing.T) {
	t.Setenv("TEST_YT_KEY", "secret")

	var maxResults string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			maxResults = r.URL.Query().Get("maxResults")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	cfg := &Config{Name: "youtube", Kind: "youtube", URL: server.URL, Options: ConfigOptions{APIKeyEnv: "TEST_YT_KEY"}}
	searcher, err := newYouTube(cfg, Env{Client: server.Client()})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := searcher.Search(context.Background(), "lenses", 100); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if maxResults != "50" {
		t.Errorf("Expected maxResults 50, got %s", maxResults)
	}
}
