// Package board holds the view state shared by every hntop presentation:
// loading, error, or a filtered story list. Renderers only read from it.
package board

import (
	"github.com/matheuskafuri/hntop/internal/story"
)

const (
	Title             = "Top 100 Hacker News Stories"
	SearchPlaceholder = "Search stories..."
	ErrorMessage      = "Error fetching stories"

	DefaultPlaceholders = 5
)

type State int

const (
	StateLoading State = iota
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	default:
		return "loading"
	}
}

// Model is the board state machine: Loading -> Success | Error.
// Success and Error are terminal; only the search term changes after that.
type Model struct {
	state        State
	stories      []story.Story
	visible      []story.Story
	term         string
	err          error
	placeholders int
}

func New(placeholders int) Model {
	if placeholders <= 0 {
		placeholders = DefaultPlaceholders
	}
	return Model{state: StateLoading, placeholders: placeholders}
}

// Resolve moves a loading board to Success. Ignored in any other state.
func (m *Model) Resolve(stories []story.Story) {
	if m.state != StateLoading {
		return
	}
	m.state = StateSuccess
	m.stories = stories
	m.visible = story.Filter(stories, m.term)
}

// Fail moves a loading board to Error. Ignored in any other state.
func (m *Model) Fail(err error) {
	if m.state != StateLoading {
		return
	}
	m.state = StateError
	m.err = err
}

// SetTerm updates the search term and recomputes the visible stories.
func (m *Model) SetTerm(term string) {
	m.term = term
	if m.state == StateSuccess {
		m.visible = story.Filter(m.stories, term)
	}
}

func (m Model) State() State { return m.state }
func (m Model) Term() string { return m.term }

// Err is the underlying failure, for logs only. Users see ErrorMessage.
func (m Model) Err() error { return m.err }

// Visible returns the filtered stories in Success, nil otherwise.
func (m Model) Visible() []story.Story {
	if m.state != StateSuccess {
		return nil
	}
	return m.visible
}

// Total is the number of fetched stories before filtering.
func (m Model) Total() int { return len(m.stories) }

// Placeholders is the number of placeholder cards to draw, non-zero only while loading.
func (m Model) Placeholders() int {
	if m.state != StateLoading {
		return 0
	}
	return m.placeholders
}
