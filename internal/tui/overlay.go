package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

// spliceOverlay replaces a rectangular region of a rendered view with
// overlay lines anchored at (anchorX, anchorY). Truncation is ANSI-aware so
// styling on both sides of the overlay survives.
func spliceOverlay(view string, overlay []string, anchorX, anchorY int) string {
	if len(overlay) == 0 {
		return view
	}

	lines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlay[0])

	for i, o := range overlay {
		y := anchorY + i
		if y < 0 || y >= len(lines) {
			continue
		}
		line := lines[y]

		var b strings.Builder
		if anchorX > 0 {
			b.WriteString(ansi.Truncate(line, anchorX, ""))
		}
		b.WriteString("\x1b[0m")
		b.WriteString(o)
		b.WriteString("\x1b[0m")
		if end := anchorX + overlayWidth; end < ansi.StringWidth(line) {
			b.WriteString(ansi.TruncateLeft(line, end, ""))
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// slide composes two equally sized page renders for a swipe: off columns
// of cur scroll out on the left and the same number of columns of next
// scroll in on the right.
func slide(cur, next string, off, width int) string {
	if off <= 0 {
		return cur
	}
	if off >= width {
		return next
	}
	left := strings.Split(cur, "\n")
	right := strings.Split(next, "\n")
	for i := range left {
		r := ""
		if i < len(right) {
			r = right[i]
		}
		left[i] = ansi.Cut(left[i], off, width) + ansi.Cut(r, 0, off)
	}
	return strings.Join(left, "\n")
}

// drawerLines renders the navigation drawer listing every page.
func (a App) drawerLines(height int) []string {
	t := theme.Active
	pages := a.engine.Pages()

	itemStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	cursorStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	width := 0
	for _, p := range pages {
		width = max(width, lipgloss.Width(p.Title)+lipgloss.Width(p.Route)+6)
	}
	width = max(width, 18)

	var b strings.Builder
	for i, p := range pages {
		marker := "  "
		if i == a.engine.ActiveIndex() {
			marker = activeStyle.Render("● ")
		}
		row := p.Title + strings.Repeat(" ", max(1, width-4-lipgloss.Width(p.Title)-lipgloss.Width(p.Route))) + p.Route
		style := itemStyle
		if i == a.drawerCursor {
			style = cursorStyle
		}
		b.WriteString(marker + style.Render(row))
		if i < len(pages)-1 {
			b.WriteString("\n")
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		BorderBackground(t.Surface).
		Background(t.Surface).
		Padding(0, 1).
		Render(b.String())

	lines := strings.Split(box, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}
