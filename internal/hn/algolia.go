package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-resty/resty/v2"

	"github.com/matheuskafuri/hntop/internal/config"
	"github.com/matheuskafuri/hntop/internal/story"
)

// AlgoliaFetcher reads the front page from the Algolia search API.
type AlgoliaFetcher struct {
	client      *resty.Client
	endpoint    string
	hitsPerPage int
}

func NewAlgoliaFetcher(endpoint string, hitsPerPage int, timeout time.Duration) *AlgoliaFetcher {
	if endpoint == "" {
		endpoint = config.AlgoliaEndpoint
	}
	if hitsPerPage <= 0 {
		hitsPerPage = 100
	}
	return &AlgoliaFetcher{client: newClient(timeout), endpoint: endpoint, hitsPerPage: hitsPerPage}
}

type algoliaResponse struct {
	Hits []json.RawMessage `json:"hits"`
}

type algoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Points      int    `json:"points"`
	Author      string `json:"author"`
	CreatedAt   string `json:"created_at"`
	CreatedAtI  int64  `json:"created_at_i"`
	NumComments int    `json:"num_comments"`
}

func (h algoliaHit) raw() story.Raw {
	created, err := time.Parse(time.RFC3339, h.CreatedAt)
	if err != nil && h.CreatedAtI > 0 {
		created = time.Unix(h.CreatedAtI, 0)
	}
	return story.Raw{
		ObjectID:    h.ObjectID,
		Title:       h.Title,
		URL:         h.URL,
		Points:      h.Points,
		Author:      h.Author,
		CreatedAt:   created,
		NumComments: h.NumComments,
	}
}

func (f *AlgoliaFetcher) Fetch(ctx context.Context) ([]story.Story, error) {
	req := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"tags":        "front_page",
			"hitsPerPage": strconv.Itoa(f.hitsPerPage),
		})

	body, err := get(req, f.endpoint)
	if err != nil {
		return nil, err
	}
	return parseAlgolia(body, f.hitsPerPage)
}

func parseAlgolia(body []byte, limit int) ([]story.Story, error) {
	var resp algoliaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %w", ErrParse, err)
	}
	if resp.Hits == nil {
		return nil, fmt.Errorf("%w: search response has no hits", ErrParse)
	}

	stories := make([]story.Story, 0, min(len(resp.Hits), limit))
	for i, msg := range resp.Hits {
		if len(stories) == limit {
			break
		}
		var hit algoliaHit
		if err := json.Unmarshal(msg, &hit); err != nil {
			lgr.Printf("[DEBUG] skipping hit %d: %v", i, err)
			continue
		}
		s, err := story.Normalize(hit.raw())
		if err != nil {
			lgr.Printf("[DEBUG] skipping hit %d: %v", i, err)
			continue
		}
		stories = append(stories, s)
	}
	return stories, nil
}
