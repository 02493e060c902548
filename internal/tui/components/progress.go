package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

// PageTrack renders continuous pager progress as a bar across all pages,
// followed by the fractional position ("1.50/3").
func PageTrack(pos float64, count, width int) string {
	t := theme.Active

	pct := 0.0
	if count > 1 {
		pct = pos / float64(count-1)
	}
	pct = max(0, min(1, pct))

	label := fmt.Sprintf("%.2f/%d", pos, max(count-1, 0))
	barW := width - lipgloss.Width(label) - 1
	if barW < 4 {
		barW = 4
	}

	bar := progress.New(
		progress.WithSolidFill(ColorForPhase(pct)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(pct) + spaceStyle.Render(" ") + labelStyle.Render(label)
}

// ColorForPhase tints the track: accent at the ends, bright accent in between.
func ColorForPhase(pct float64) string {
	t := theme.Active
	switch {
	case pct <= 0, pct >= 1:
		return string(t.Accent)
	default:
		return string(t.AccentBright)
	}
}
