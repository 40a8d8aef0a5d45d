// Package hn fetches Hacker News front-page stories.
package hn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/matheuskafuri/hntop/internal/config"
	"github.com/matheuskafuri/hntop/internal/story"
)

var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("network error")
	// ErrParse covers malformed or unexpected response bodies.
	ErrParse = errors.New("parse error")
)

const userAgent = "hntop (+https://github.com/matheuskafuri/hntop)"

// Fetcher returns the current front-page stories in rank order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]story.Story, error)
}

// New builds the fetcher for the configured source.
func New(cfg *config.Config) (Fetcher, error) {
	client := newClient(cfg.TimeoutDuration())
	switch cfg.Source {
	case config.SourceAlgolia, "":
		return &AlgoliaFetcher{client: client, endpoint: cfg.ResolvedEndpoint(), hitsPerPage: cfg.GetHitsPerPage()}, nil
	case config.SourceRSS:
		return NewRSSFetcher(client, cfg.ResolvedEndpoint(), cfg.GetHitsPerPage()), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}

func newClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
}

// get performs the request and maps failures onto ErrNetwork.
func get(req *resty.Request, endpoint string) ([]byte, error) {
	resp, err := req.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: requesting %s: %w", ErrNetwork, endpoint, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNetwork, endpoint, resp.StatusCode())
	}
	return resp.Body(), nil
}
