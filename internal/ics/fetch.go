package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Feed is a single ICS subscription.
type Feed struct {
	ID  string
	URL string
}

type cachedFeed struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads ICS feeds, honoring ETag and Last-Modified. The last good
// body of each feed is kept in memory and served when the origin fails.
type Fetcher struct {
	client *http.Client
	log    zerolog.Logger

	mu    sync.Mutex
	cache map[string]cachedFeed
}

func NewFetcher(logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log:   logger.With().Str("component", "ics").Logger(),
		cache: make(map[string]cachedFeed),
	}
}

// Fetch returns the feed body, from the network or the in-memory copy.
func (f *Fetcher) Fetch(ctx context.Context, feed Feed) ([]byte, error) {
	if feed.URL == "" {
		return nil, errors.New("feed URL is empty")
	}

	f.mu.Lock()
	cached, hasCache := f.cache[feed.URL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if cached.etag != "" {
		req.Header.Set("If-None-Match", cached.etag)
	}
	if cached.lastModified != "" {
		req.Header.Set("If-Modified-Since", cached.lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCache {
			f.log.Warn().Err(err).Str("feed", feed.ID).Str("url", redactURL(feed.URL)).Msg("ics fetch failed, using cached body")
			return cached.body, nil
		}
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed: %w", err)
		}
		f.mu.Lock()
		f.cache[feed.URL] = cachedFeed{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		f.log.Debug().Str("feed", feed.ID).Int("bytes", len(body)).Msg("ics fetched")
		return body, nil

	case http.StatusNotModified:
		if !hasCache {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		return cached.body, nil

	default:
		if hasCache {
			f.log.Warn().Int("status", resp.StatusCode).Str("feed", feed.ID).Str("url", redactURL(feed.URL)).Msg("ics fetch non-OK, using cached body")
			return cached.body, nil
		}
		return nil, fmt.Errorf("failed to fetch feed: %s", resp.Status)
	}
}

// redactURL keeps only scheme and host; feed URLs often embed secrets.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
