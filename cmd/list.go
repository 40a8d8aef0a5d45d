package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/go-pkgz/lgr"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/hntop/internal/board"
	"github.com/matheuskafuri/hntop/internal/story"
)

// errFetch carries only the user-facing message; details go to the log.
var errFetch = errors.New(board.ErrorMessage)

var (
	flagListSearch string
	flagListJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print front-page stories and exit",
	Long: `Fetch the front page once and print the stories, optionally filtered by title.

Exits with status 1 and "Error fetching stories" when the fetch fails.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&flagListSearch, "search", "s", "", "only show stories whose title contains this text")
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print stories as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	b := board.New(a.cfg.GetPlaceholders())
	stories, err := a.client.Fetch(ctx, a.key, a.fetcher.Fetch)
	if err != nil {
		lgr.Printf("[WARN] fetching stories: %v", err)
		b.Fail(err)
	} else {
		b.Resolve(stories)
	}
	b.SetTerm(flagListSearch)

	return printBoard(cmd.OutOrStdout(), b, flagListJSON)
}

func printBoard(w io.Writer, b board.Model, asJSON bool) error {
	if b.State() != board.StateSuccess {
		return errFetch
	}

	visible := b.Visible()
	if asJSON {
		if visible == nil {
			visible = []story.Story{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(visible)
	}

	for _, s := range visible {
		line := fmt.Sprintf("%5d  %s", s.Points, s.Title)
		if d := s.Domain(); d != "" {
			line += fmt.Sprintf("  (%s)", d)
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "       by %s, %s, %s comments\n", s.Author, humanize.Time(s.CreatedAt), humanize.Comma(int64(s.NumComments)))
	}
	return nil
}
