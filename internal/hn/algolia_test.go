package hn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuskafuri/hntop/internal/config"
)

func TestAlgoliaFetcher_Fetch(t *testing.T) {
	payload, err := os.ReadFile("testdata/front_page.json")
	require.NoError(t, err)

	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	f := NewAlgoliaFetcher(ts.URL, 100, 5*time.Second)
	stories, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "tags=front_page")
	assert.Contains(t, gotQuery, "hitsPerPage=100")

	// the hit without an id and the one with a bad points field are skipped
	require.Len(t, stories, 3)
	assert.Equal(t, "41000001", stories[0].ObjectID)
	assert.Equal(t, "Go 1.25 is released", stories[0].Title)
	assert.Equal(t, "https://go.dev/blog/go1.25", stories[0].URL)
	assert.Equal(t, 812, stories[0].Points)
	assert.Equal(t, "rsc", stories[0].Author)
	assert.Equal(t, 301, stories[0].NumComments)
	assert.True(t, stories[0].CreatedAt.Equal(time.Date(2026, 8, 12, 16, 0, 0, 0, time.UTC)))

	assert.Empty(t, stories[1].URL)
	assert.Equal(t, 0, stories[1].NumComments)
	assert.Equal(t, "https://news.ycombinator.com/item?id=41000002", stories[1].Link())

	assert.True(t, stories[2].CreatedAt.Equal(time.Unix(1786543200, 0)), "falls back to created_at_i")
}

func TestAlgoliaFetcher_Limit(t *testing.T) {
	payload, err := os.ReadFile("testdata/front_page.json")
	require.NoError(t, err)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer ts.Close()

	stories, err := NewAlgoliaFetcher(ts.URL, 2, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, stories, 2)
}

func TestAlgoliaFetcher_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, ErrNetwork},
		{"rate limited", http.StatusTooManyRequests, ``, ErrNetwork},
		{"malformed json", http.StatusOK, `{"hits": [`, ErrParse},
		{"no hits field", http.StatusOK, `{"message":"ok"}`, ErrParse},
		{"hits not an array", http.StatusOK, `{"hits": 3}`, ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewAlgoliaFetcher(ts.URL, 100, time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAlgoliaFetcher_EmptyHits(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": []}`))
	}))
	defer ts.Close()

	stories, err := NewAlgoliaFetcher(ts.URL, 100, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestAlgoliaFetcher_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := NewAlgoliaFetcher(url, 100, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestAlgoliaFetcher_Cancelled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewAlgoliaFetcher(ts.URL, 100, 0).Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestNew(t *testing.T) {
	f, err := New(&config.Config{Source: config.SourceAlgolia})
	require.NoError(t, err)
	assert.IsType(t, &AlgoliaFetcher{}, f)

	f, err = New(&config.Config{Source: config.SourceRSS})
	require.NoError(t, err)
	assert.IsType(t, &RSSFetcher{}, f)

	_, err = New(&config.Config{Source: "gopher"})
	assert.Error(t, err)
}
