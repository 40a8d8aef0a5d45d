package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if cfg.Source != SourceAlgolia {
		t.Errorf("expected default source algolia, got %q", cfg.Source)
	}
	if cfg.GetHitsPerPage() != 100 {
		t.Errorf("expected 100 hits per page, got %d", cfg.GetHitsPerPage())
	}
	if cfg.GetRetries() != 3 {
		t.Errorf("expected 3 retries, got %d", cfg.GetRetries())
	}
	if cfg.GetPlaceholders() != 5 {
		t.Errorf("expected 5 placeholders, got %d", cfg.GetPlaceholders())
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults do not validate: %v", err)
	}
}

func TestRefreshDuration(t *testing.T) {
	cfg := &Config{RefreshInterval: "30m"}
	if d := cfg.RefreshDuration(); d != 30*time.Minute {
		t.Errorf("expected 30m, got %v", d)
	}

	cfg.RefreshInterval = "invalid"
	if d := cfg.RefreshDuration(); d != 10*time.Minute {
		t.Errorf("expected 10m default for invalid interval, got %v", d)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"30d", 30},
		{"720h", 30},
		{"", 7},
		{"invalid", 7},
	}
	for _, tt := range tests {
		cfg := &Config{Retention: tt.input}
		got := cfg.RetentionDuration()
		if got != time.Duration(tt.wantDays)*24*time.Hour {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestTimeoutDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 30 * time.Second},
		{"5s", 5 * time.Second},
		{"0", 0},
		{"bogus", 30 * time.Second},
	}
	for _, tt := range tests {
		cfg := &Config{Timeout: tt.input}
		if got := cfg.TimeoutDuration(); got != tt.want {
			t.Errorf("TimeoutDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetRetries(t *testing.T) {
	zero, five, negative := 0, 5, -2
	tests := []struct {
		input *int
		want  int
	}{
		{nil, 3},
		{&zero, 0},
		{&five, 5},
		{&negative, 3},
	}
	for _, tt := range tests {
		cfg := &Config{Retries: tt.input}
		if got := cfg.GetRetries(); got != tt.want {
			t.Errorf("GetRetries() = %d, want %d", got, tt.want)
		}
	}
}

func TestResolvedEndpoint(t *testing.T) {
	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Source: SourceAlgolia}, AlgoliaEndpoint},
		{Config{Source: SourceRSS}, RSSEndpoint},
		{Config{Source: SourceRSS, Endpoint: "http://localhost:9000/rss"}, "http://localhost:9000/rss"},
	}
	for _, tt := range tests {
		if got := tt.cfg.ResolvedEndpoint(); got != tt.want {
			t.Errorf("ResolvedEndpoint(%+v) = %q, want %q", tt.cfg, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `source: rss
retries: 0
placeholders: 8
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceRSS {
		t.Errorf("expected rss, got %s", cfg.Source)
	}
	if cfg.GetRetries() != 0 {
		t.Errorf("expected retries 0, got %d", cfg.GetRetries())
	}
	if cfg.GetPlaceholders() != 8 {
		t.Errorf("expected 8 placeholders, got %d", cfg.GetPlaceholders())
	}
	// keys missing from the file keep their defaults
	if cfg.RefreshInterval != "10m" {
		t.Errorf("expected default refresh_interval 10m, got %q", cfg.RefreshInterval)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != SourceAlgolia {
		t.Errorf("expected default source, got %q", cfg.Source)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("source: twitter\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"algolia", Config{Source: SourceAlgolia}, false},
		{"rss", Config{Source: SourceRSS}, false},
		{"unknown source", Config{Source: "json"}, true},
		{"https endpoint", Config{Source: SourceAlgolia, Endpoint: "https://example.com/search"}, false},
		{"file endpoint", Config{Source: SourceAlgolia, Endpoint: "file:///etc/passwd"}, true},
		{"hits too large", Config{Source: SourceAlgolia, HitsPerPage: 5000}, true},
		{"bad timeout", Config{Source: SourceAlgolia, Timeout: "soon"}, true},
	}
	for _, tt := range tests {
		err := validate(&tt.cfg)
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDays(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseDays(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDays(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDays(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
