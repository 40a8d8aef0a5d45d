package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/matheuskafuri/hntop/internal/board"
	"github.com/matheuskafuri/hntop/internal/story"
)

const maxTermLen = 100

type pageData struct {
	Title             string
	SearchPlaceholder string
	ErrorMessage      string
	Term              string
	State             string
	Placeholders      []struct{}
	Stories           []story.Story
	Total             int
}

type storiesResponse struct {
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Stories []story.Story `json:"stories"`
}

// indexHandler renders the board page, starting the fetch on first visit
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.startFetch()
	b := s.currentBoard(searchTerm(r))

	data := pageData{
		Title:             board.Title,
		SearchPlaceholder: board.SearchPlaceholder,
		ErrorMessage:      board.ErrorMessage,
		Term:              b.Term(),
		State:             b.State().String(),
		Placeholders:      make([]struct{}, b.Placeholders()),
		Stories:           b.Visible(),
		Total:             b.Total(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		lgr.Printf("[ERROR] rendering page: %v", err)
	}
}

// storiesHandler returns the board state and filtered stories as JSON
func (s *Server) storiesHandler(w http.ResponseWriter, r *http.Request) {
	s.startFetch()
	b := s.currentBoard(searchTerm(r))

	resp := storiesResponse{Status: b.State().String(), Stories: []story.Story{}}
	switch b.State() {
	case board.StateError:
		resp.Error = board.ErrorMessage
	case board.StateSuccess:
		resp.Stories = b.Visible()
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// refreshHandler drops the cached entry and starts a new fetch
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	s.client.Invalidate(s.key)
	s.startFetch()
	lgr.Printf("[INFO] refresh requested for %s", s.key)
	RenderJSON(w, r, http.StatusAccepted, storiesResponse{Status: board.StateLoading.String(), Stories: []story.Story{}})
}

// methodNotAllowed answers 405 for a known path hit with the wrong method
func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		RenderJSON(w, r, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func searchTerm(r *http.Request) string {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if runes := []rune(term); len(runes) > maxTermLen {
		term = string(runes[:maxTermLen])
	}
	return term
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}
