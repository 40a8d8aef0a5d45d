package story

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const discussionBase = "https://news.ycombinator.com/item?id="

var (
	ErrMissingID    = errors.New("story has no objectID")
	ErrMissingTitle = errors.New("story has no title")
)

var textPolicy = bluemonday.StrictPolicy()

// Story is a single front-page item. Stories are immutable once fetched.
type Story struct {
	ObjectID    string    `json:"objectID"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Points      int       `json:"points"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	NumComments int       `json:"num_comments"`
}

// Raw is an untrusted story record as decoded from a source, before validation.
type Raw struct {
	ObjectID    string
	Title       string
	URL         string
	Points      int
	Author      string
	CreatedAt   time.Time
	NumComments int
}

// Normalize validates a raw record and coerces it into a Story.
func Normalize(r Raw) (Story, error) {
	id := strings.TrimSpace(r.ObjectID)
	if id == "" {
		return Story{}, ErrMissingID
	}
	// titles are plain text; "<T>" or "<dialog>" are part of the title
	title := collapseSpace(r.Title)
	if title == "" {
		return Story{}, fmt.Errorf("story %s: %w", id, ErrMissingTitle)
	}

	return Story{
		ObjectID:    id,
		Title:       title,
		URL:         cleanURL(r.URL),
		Points:      max(0, r.Points),
		Author:      strings.TrimSpace(r.Author),
		CreatedAt:   r.CreatedAt.UTC(),
		NumComments: max(0, r.NumComments),
	}, nil
}

// CleanText strips markup from an HTML fragment and collapses whitespace.
func CleanText(s string) string {
	return collapseSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return raw
}

// DiscussionURL points at the Hacker News comment page for the story.
func (s Story) DiscussionURL() string {
	return discussionBase + s.ObjectID
}

// Link returns the story URL, falling back to the discussion page for text posts.
func (s Story) Link() string {
	if s.URL != "" {
		return s.URL
	}
	return s.DiscussionURL()
}

// Domain returns the story host without a leading "www.".
func (s Story) Domain() string {
	if s.URL == "" {
		return ""
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
