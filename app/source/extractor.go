package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/readeck/go-readability"
	"golang.org/x/time/rate"
)

// Extractor fetches a page and returns its main readable text.
type Extractor struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

func NewExtractor(client *http.Client, userAgent string, limiter *rate.Limiter) *Extractor {
	return &Extractor{
		client:    client,
		userAgent: userAgent,
		limiter:   limiter,
	}
}

func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	data, err := fetch(ctx, e.client, e.userAgent, pageURL)
	if err != nil {
		return "", err
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}

	return e.Run(data, parsedURL)
}

func (e *Extractor) Run(data []byte, pageURL *url.URL) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	text := plainText(article.Content)
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Content extracted successfully",
		"title", article.Title,
		"content_length", len(text))

	if article.Title != "" {
		return article.Title + "\n\n" + text, nil
	}
	return text, nil
}
