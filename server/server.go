package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/matheuskafuri/hntop/internal/board"
	"github.com/matheuskafuri/hntop/internal/hn"
	"github.com/matheuskafuri/hntop/internal/query"
	"github.com/matheuskafuri/hntop/internal/story"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server serves the story board as an HTML page and a JSON API
type Server struct {
	client       *query.Client[[]story.Story]
	fetcher      hn.Fetcher
	key          string
	placeholders int
	listen       string
	version      string
	debug        bool
	page         *template.Template

	lock       sync.Mutex
	baseCtx    context.Context // bounds background fetches, replaced by Run
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Config holds server parameters
type Config struct {
	Listen       string
	Version      string
	Debug        bool
	Key          string // query cache key for the front page
	Placeholders int
}

// New initializes a new server instance
func New(cfg Config, client *query.Client[[]story.Story], fetcher hn.Fetcher) *Server {
	s := &Server{
		client:       client,
		fetcher:      fetcher,
		key:          cfg.Key,
		placeholders: cfg.Placeholders,
		listen:       cfg.Listen,
		version:      cfg.Version,
		debug:        cfg.Debug,
		page:         template.Must(template.ParseFS(templatesFS, "templates/index.html")),
		baseCtx:      context.Background(),
		router:       routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	lgr.Printf("[INFO] starting server on %s", s.listen)

	s.lock.Lock()
	s.baseCtx = ctx
	s.httpServer = &http.Server{
		Addr:              s.listen,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	httpServer := s.httpServer
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("hntop", "matheuskafuri", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.indexHandler)

	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /stories", s.storiesHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)
		r.HandleFunc("GET /refresh", methodNotAllowed(http.MethodPost))
	})
}

// startFetch kicks off a background fetch when the key has no entry yet.
// The fetch is bound to the server context, not to the request.
func (s *Server) startFetch() {
	if s.client.Peek(s.key).Status != query.StatusAbsent {
		return
	}

	s.lock.Lock()
	ctx := s.baseCtx
	s.lock.Unlock()

	go func() {
		if _, err := s.client.Fetch(ctx, s.key, s.fetcher.Fetch); err != nil {
			lgr.Printf("[WARN] fetching stories: %v", err)
		}
	}()
}

// currentBoard builds the board for the cache entry as it is right now.
func (s *Server) currentBoard(term string) board.Model {
	b := board.New(s.placeholders)
	snap := s.client.Peek(s.key)
	switch snap.Status {
	case query.StatusResolved:
		b.Resolve(snap.Data)
	case query.StatusFailed:
		b.Fail(snap.Err)
	}
	b.SetTerm(term)
	return b
}
