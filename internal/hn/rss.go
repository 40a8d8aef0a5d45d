package hn

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"github.com/matheuskafuri/hntop/internal/story"
)

var (
	pointsRe   = regexp.MustCompile(`Points:\s*(\d+)`)
	commentsRe = regexp.MustCompile(`# Comments:\s*(\d+)`)
)

// RSSFetcher reads the front page from an hnrss.org style feed.
type RSSFetcher struct {
	client   *resty.Client
	parser   *gofeed.Parser
	endpoint string
	count    int
}

func NewRSSFetcher(client *resty.Client, endpoint string, count int) *RSSFetcher {
	if client == nil {
		client = newClient(30 * time.Second)
	}
	if count <= 0 {
		count = 100
	}
	return &RSSFetcher{client: client, parser: gofeed.NewParser(), endpoint: endpoint, count: count}
}

func (f *RSSFetcher) Fetch(ctx context.Context) ([]story.Story, error) {
	req := f.client.R().
		SetContext(ctx).
		SetQueryParam("count", strconv.Itoa(f.count))

	body, err := get(req, f.endpoint)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing feed: %w", ErrParse, err)
	}

	now := time.Now()
	stories := make([]story.Story, 0, min(len(feed.Items), f.count))
	for i, item := range feed.Items {
		if len(stories) == f.count {
			break
		}
		s, err := story.Normalize(itemRaw(item, now))
		if err != nil {
			lgr.Printf("[DEBUG] skipping feed item %d: %v", i, err)
			continue
		}
		stories = append(stories, s)
	}
	return stories, nil
}

func itemRaw(item *gofeed.Item, now time.Time) story.Raw {
	id := itemID(item.GUID)
	if id == "" {
		id = itemID(item.Link)
	}

	link := item.Link
	if itemID(link) == id {
		// text posts link back to their own discussion page
		link = ""
	}

	created := now
	if item.PublishedParsed != nil {
		created = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		created = *item.UpdatedParsed
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}

	desc := story.CleanText(item.Description)
	return story.Raw{
		ObjectID:    id,
		Title:       item.Title,
		URL:         link,
		Points:      matchInt(pointsRe, desc),
		Author:      author,
		CreatedAt:   created,
		NumComments: matchInt(commentsRe, desc),
	}
}

// itemID extracts the id from a news.ycombinator.com/item?id=N link.
func itemID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !strings.HasSuffix(u.Hostname(), "ycombinator.com") || u.Path != "/item" {
		return ""
	}
	return u.Query().Get("id")
}

func matchInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
