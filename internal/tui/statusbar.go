package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(visible, total int, term string, loading bool, width int) string {
	left := fmt.Sprintf(" %d stories", total)
	if term != "" {
		left = fmt.Sprintf(" %d of %d stories · %q", visible, total, term)
	}
	if loading {
		left = " fetching front page..."
	}

	right := " ↑/↓ row  tab next  enter open  esc quit "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
