package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matheuskafuri/hntop/internal/board"
	"github.com/matheuskafuri/hntop/internal/config"
	"github.com/matheuskafuri/hntop/internal/story"
)

func testStories() []story.Story {
	now := time.Now()
	return []story.Story{
		{ObjectID: "1", Title: "Go 1.25 is released", URL: "https://www.go.dev/blog/go1.25", Points: 812, Author: "rsc", NumComments: 1301, CreatedAt: now.Add(-3 * time.Hour)},
		{ObjectID: "2", Title: "Ask HN: What are you working on?", Points: 42, Author: "pg", NumComments: 7, CreatedAt: now.Add(-time.Hour)},
	}
}

func TestPrintBoardText(t *testing.T) {
	b := board.New(5)
	b.Resolve(testStories())

	var buf bytes.Buffer
	if err := printBoard(&buf, b, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"  812  Go 1.25 is released  (go.dev)",
		"by rsc, 3 hours ago, 1,301 comments",
		"   42  Ask HN: What are you working on?\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintBoardFiltered(t *testing.T) {
	b := board.New(5)
	b.Resolve(testStories())
	b.SetTerm("ASK")

	var buf bytes.Buffer
	if err := printBoard(&buf, b, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "Go 1.25") {
		t.Errorf("filtered story printed:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Ask HN") {
		t.Errorf("matching story missing:\n%s", buf.String())
	}
}

func TestPrintBoardJSON(t *testing.T) {
	tests := []struct {
		term string
		want int
	}{
		{"", 2},
		{"go", 1},
		{"nothing matches this", 0},
	}
	for _, tt := range tests {
		b := board.New(5)
		b.Resolve(testStories())
		b.SetTerm(tt.term)

		var buf bytes.Buffer
		if err := printBoard(&buf, b, true); err != nil {
			t.Fatalf("term %q: unexpected error: %v", tt.term, err)
		}
		var got []story.Story
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("term %q: invalid json: %v", tt.term, err)
		}
		if got == nil {
			t.Errorf("term %q: expected a JSON array, got %s", tt.term, buf.String())
		}
		if len(got) != tt.want {
			t.Errorf("term %q: got %d stories, want %d", tt.term, len(got), tt.want)
		}
	}
}

func TestPrintBoardError(t *testing.T) {
	b := board.New(5)
	b.Fail(fmt.Errorf("dial tcp: refused"))

	var buf bytes.Buffer
	err := printBoard(&buf, b, false)
	if !errors.Is(err, errFetch) {
		t.Fatalf("expected errFetch, got %v", err)
	}
	if err.Error() != "Error fetching stories" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed on error, got %q", buf.String())
	}
}

func TestFrontPageKey(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"", "front_page:algolia"},
		{config.SourceAlgolia, "front_page:algolia"},
		{config.SourceRSS, "front_page:rss"},
	}
	for _, tt := range tests {
		if got := frontPageKey(&config.Config{Source: tt.source}); got != tt.want {
			t.Errorf("frontPageKey(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{7 * 24, "7d"},
		{36, "1d"},
		{12, "12h"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.hours); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
	if plural(1) != "y" || plural(3) != "ies" {
		t.Error("unexpected plural suffix")
	}
}

func TestCommands(t *testing.T) {
	want := map[string]bool{"list": false, "serve": false, "prune": false, "stats": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}

	for _, flag := range []string{"config", "refresh", "dbg"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing global flag --%s", flag)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-06-01")
	defer SetVersionInfo("dev", "none", "unknown")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "hntop 1.2.3 (commit: abc123, built: 2025-06-01)\n" {
		t.Errorf("unexpected version output %q", got)
	}
}
