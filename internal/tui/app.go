package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-pkgz/lgr"

	"github.com/matheuskafuri/hntop/internal/board"
	"github.com/matheuskafuri/hntop/internal/browser"
	"github.com/matheuskafuri/hntop/internal/hn"
	"github.com/matheuskafuri/hntop/internal/query"
	"github.com/matheuskafuri/hntop/internal/story"
)

type App struct {
	board   board.Model
	client  *query.Client[[]story.Story]
	fetcher hn.Fetcher
	key     string

	// cancelled on teardown so a late response cannot touch a closed view
	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	cursor int
	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model

	openURL func(string) error
	err     error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Client       *query.Client[[]story.Story]
	Fetcher      hn.Fetcher
	Key          string
	Placeholders int
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = board.SearchPlaceholder
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		board:       board.New(opts.Placeholders),
		client:      opts.Client,
		fetcher:     opts.Fetcher,
		key:         opts.Key,
		ctx:         ctx,
		cancel:      cancel,
		searchInput: ti,
		spinner:     sp,
		openURL:     browser.Open,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.fetchCmd(), a.spinner.Tick, textinput.Blink)
}

func (a *App) fetchCmd() tea.Cmd {
	ctx, client, fetcher, key := a.ctx, a.client, a.fetcher, a.key
	return func() tea.Msg {
		stories, err := client.Fetch(ctx, key, fetcher.Fetch)
		if err != nil {
			return storiesErrMsg{err: err}
		}
		return storiesLoadedMsg{stories: stories}
	}
}

func openBrowserCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if err := open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

// teardown cancels the in-flight fetch and stops accepting results.
func (a *App) teardown() {
	a.closed = true
	a.cancel()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case storiesLoadedMsg:
		if a.closed {
			return a, nil
		}
		a.board.Resolve(msg.stories)
		lgr.Printf("[DEBUG] loaded %d stories", len(msg.stories))
		return a, nil

	case storiesErrMsg:
		if a.closed {
			return a, nil
		}
		lgr.Printf("[WARN] fetching stories: %v", msg.err)
		a.board.Fail(msg.err)
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.board.State() == board.StateLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.board.Visible()
	cols := gridColumns(a.width)

	switch msg.String() {
	case "ctrl+c", "esc":
		a.teardown()
		return a, tea.Quit
	case "down":
		if a.cursor+cols < len(visible) {
			a.cursor += cols
		}
		return a, nil
	case "up":
		if a.cursor-cols >= 0 {
			a.cursor -= cols
		}
		return a, nil
	case "tab":
		if a.cursor < len(visible)-1 {
			a.cursor++
		}
		return a, nil
	case "shift+tab":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "enter":
		if a.cursor < len(visible) {
			return a, openBrowserCmd(a.openURL, visible[a.cursor].Link())
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if term := a.searchInput.Value(); term != a.board.Term() {
		a.board.SetTerm(term)
		a.cursor = 0
	}
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorPrimary).Render("  hntop")
	}

	header := headerStyle.Render(board.Title)
	if a.board.State() == board.StateLoading {
		header += " " + a.spinner.View()
	}

	search := a.searchInput.View()

	// header + search + blank line + status bar
	bodyHeight := a.height - 4
	if bodyHeight < cardHeight {
		bodyHeight = cardHeight
	}

	cols := gridColumns(a.width)
	w := cardWidth(a.width, cols)

	var body string
	switch a.board.State() {
	case board.StateLoading:
		n := a.board.Placeholders()
		h := placeholderHeight(n, cols, bodyHeight)
		body = renderGrid(n, cols, 0, bodyHeight, h, func(int) string {
			return renderPlaceholder(w, h)
		})
	case board.StateError:
		body = errorStyle.Render(board.ErrorMessage)
	case board.StateSuccess:
		visible := a.board.Visible()
		if len(visible) == 0 {
			body = emptyStyle.Render(fmt.Sprintf("No stories match %q", a.board.Term()))
		} else {
			body = renderGrid(len(visible), cols, a.cursor, bodyHeight, cardHeight, func(i int) string {
				return renderCard(visible[i], i == a.cursor, w)
			})
		}
	}

	// pad body so the status bar sticks to the bottom
	lines := strings.Split(body, "\n")
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	body = strings.Join(lines[:bodyHeight], "\n")

	status := renderStatusBar(
		len(a.board.Visible()),
		a.board.Total(),
		a.board.Term(),
		a.board.State() == board.StateLoading,
		a.width,
	)

	// Error display
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, search, "", body, status)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	defer app.teardown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
