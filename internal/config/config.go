package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	SourceAlgolia = "algolia"
	SourceRSS     = "rss"

	AlgoliaEndpoint = "https://hn.algolia.com/api/v1/search"
	RSSEndpoint     = "https://hnrss.org/frontpage"
)

type Config struct {
	Source          string `yaml:"source"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	HitsPerPage     int    `yaml:"hits_per_page"`
	Timeout         string `yaml:"timeout"`
	Retries         *int   `yaml:"retries,omitempty"`
	RefreshInterval string `yaml:"refresh_interval"`
	Retention       string `yaml:"retention"`
	Placeholders    int    `yaml:"placeholders"`
	Listen          string `yaml:"listen"`
}

// ResolvedEndpoint returns the configured endpoint or the default for the source.
func (c *Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.Source == SourceRSS {
		return RSSEndpoint
	}
	return AlgoliaEndpoint
}

func (c *Config) GetHitsPerPage() int {
	if c.HitsPerPage <= 0 {
		return 100
	}
	return c.HitsPerPage
}

// TimeoutDuration returns the HTTP timeout. Zero means no timeout.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 30 * time.Second
	}
	return d
}

func (c *Config) GetRetries() int {
	if c.Retries == nil || *c.Retries < 0 {
		return 3
	}
	return *c.Retries
}

func (c *Config) RefreshDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 10 * time.Minute
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 7 * 24 * time.Hour
	}
	d, err := ParseDays(c.Retention)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// GetPlaceholders returns how many placeholder cards to show while loading.
func (c *Config) GetPlaceholders() int {
	if c.Placeholders <= 0 {
		return 5
	}
	return c.Placeholders
}

func (c *Config) GetListen() string {
	if c.Listen == "" {
		return ":8080"
	}
	return c.Listen
}

// ParseDays parses a duration that may use the "Nd" day suffix.
func ParseDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "hntop", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "hntop", "hntop.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "hntop", "hntop.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// first run: best effort, embedded defaults are used either way
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// user values override defaults key by key
	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Source {
	case SourceAlgolia, SourceRSS:
	default:
		return fmt.Errorf("unknown source %q (valid: algolia, rss)", cfg.Source)
	}
	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
		}
	}
	if cfg.HitsPerPage < 0 || cfg.HitsPerPage > 1000 {
		return fmt.Errorf("hits_per_page must be between 1 and 1000, got %d", cfg.HitsPerPage)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", cfg.Timeout, err)
		}
	}
	return nil
}
