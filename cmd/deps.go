package cmd

import (
	"fmt"

	"github.com/go-pkgz/lgr"

	"github.com/matheuskafuri/hntop/internal/cache"
	"github.com/matheuskafuri/hntop/internal/config"
	"github.com/matheuskafuri/hntop/internal/hn"
	"github.com/matheuskafuri/hntop/internal/query"
	"github.com/matheuskafuri/hntop/internal/story"
)

// app bundles what every story-reading command needs.
type app struct {
	cfg     *config.Config
	db      *cache.Cache
	fetcher hn.Fetcher
	client  *query.Client[[]story.Story]
	key     string
}

func openApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	fetcher, err := hn.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating fetcher: %w", err)
	}

	db, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	if n, err := db.Prune(cfg.RetentionDuration()); err != nil {
		lgr.Printf("[WARN] pruning snapshots: %v", err)
	} else if n > 0 {
		lgr.Printf("[DEBUG] pruned %d stored stories", n)
	}

	return &app{
		cfg:     cfg,
		db:      db,
		fetcher: fetcher,
		client:  newQueryClient(cfg, db, flagRefresh),
		key:     frontPageKey(cfg),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		lgr.Printf("[WARN] closing cache: %v", err)
	}
}

func newQueryClient(cfg *config.Config, db *cache.Cache, refresh bool) *query.Client[[]story.Story] {
	opts := query.Options[[]story.Story]{
		Retries:   cfg.GetRetries(),
		StaleTime: cfg.RefreshDuration(),
	}
	if db != nil {
		opts.Store = cache.StoryStore{Cache: db}
	}
	if refresh {
		opts.StaleTime = 0
	}
	return query.New(opts)
}

// frontPageKey is the cache key for the front page; snapshots from different
// sources never mix.
func frontPageKey(cfg *config.Config) string {
	source := cfg.Source
	if source == "" {
		source = config.SourceAlgolia
	}
	return "front_page:" + source
}
