package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/hntop/internal/story"
)

// cardHeight is the rendered height of a card: 4 content lines plus borders.
const cardHeight = 6

// compactHeight is a one-line placeholder, used when full cards do not fit.
const compactHeight = 3

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func gridColumns(width int) int {
	switch {
	case width >= 120:
		return 3
	case width >= 80:
		return 2
	default:
		return 1
	}
}

// cardWidth splits the available width evenly between columns.
func cardWidth(width, cols int) int {
	w := width / cols
	if w < 20 {
		w = 20
	}
	return w
}

func renderCard(s story.Story, selected bool, width int) string {
	inner := width - 4 // border + padding

	titleStyle, boxStyle := cardTitleStyle, cardStyle
	if selected {
		titleStyle, boxStyle = cardTitleActiveStyle, cardActiveStyle
	}

	title := titleStyle.Render(truncateStr(s.Title, inner))

	points := cardPointsStyle.Render(fmt.Sprintf("▲ Upvotes: %d", s.Points))
	byline := points
	if s.Author != "" {
		byline += cardMetaStyle.Render(" · by " + s.Author)
	}

	meta := fmt.Sprintf("%d comments · %s", s.NumComments, relativeTime(s.CreatedAt))
	if d := s.Domain(); d != "" {
		meta += " · " + d
	}

	link := cardLinkStyle.Render(truncateStr(s.Link(), inner))

	content := strings.Join([]string{
		title,
		truncateLine(byline, inner),
		cardMetaStyle.Render(truncateStr(meta, inner)),
		link,
	}, "\n")

	return boxStyle.Width(width - 2).Height(cardHeight - 2).Render(content)
}

// truncateLine keeps styled lines from wrapping inside a card.
func truncateLine(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func renderPlaceholder(width, height int) string {
	inner := width - 4
	if inner < 4 {
		inner = 4
	}
	bar := func(frac float64) string {
		return skeletonStyle.Render(strings.Repeat("░", max(1, int(float64(inner)*frac))))
	}
	lines := []string{bar(0.9), bar(0.5), bar(0.35), bar(0.7)}
	content := strings.Join(lines[:height-2], "\n")
	return cardStyle.Width(width - 2).Height(height - 2).Render(content)
}

// placeholderHeight picks full cards when n placeholders fit in height,
// compact ones otherwise.
func placeholderHeight(n, cols, height int) int {
	rows := (n + cols - 1) / cols
	if rows*cardHeight <= height {
		return cardHeight
	}
	return compactHeight
}

// renderGrid lays n cards out row by row. Only the rows that fit in height are
// rendered, scrolled so the cursor row stays in view.
func renderGrid(n, cols, cursor, height, rowHeight int, card func(i int) string) string {
	if n == 0 {
		return ""
	}
	visibleRows := max(1, height/rowHeight)
	cursorRow := cursor / cols

	startRow := 0
	if cursorRow >= visibleRows {
		startRow = cursorRow - visibleRows + 1
	}

	var rows []string
	for r := startRow; r < startRow+visibleRows; r++ {
		start := r * cols
		if start >= n {
			break
		}
		end := min(start+cols, n)
		row := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			row = append(row, card(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
