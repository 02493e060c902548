package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pagesync/internal/model"
	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

// TabBarHeight is the number of rows RenderTabBar produces.
const TabBarHeight = 2

// Indicator places the underline below the tab bar. Offset is in columns
// from the left edge of the first tab; Scale is the bounce factor.
type Indicator struct {
	Offset float64
	Scale  float64
}

// TabWidths splits width into one slot per page.
func TabWidths(pages model.Pages, width int) []int {
	return LayoutRow(width, len(pages))
}

// TabAtX returns the page index whose slot contains column x, or -1.
func TabAtX(pages model.Pages, width, x int) int {
	if x < 0 {
		return -1
	}
	pos := 0
	for i, w := range TabWidths(pages, width) {
		if x < pos+w {
			return i
		}
		pos += w
	}
	return -1
}

// RenderTabBar renders one row of page labels and one row holding the
// selection indicator. The indicator is drawn from ind, not from activeIdx,
// so it tracks the pager continuously during a swipe.
func RenderTabBar(pages model.Pages, activeIdx int, ind Indicator, width int, bg lipgloss.Color) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.TextOn(string(bg))).
		Background(bg).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(bg)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(bg)

	widths := TabWidths(pages, width)
	var labels strings.Builder
	for i, p := range pages {
		name := p.Title
		if p.Icon != "" {
			name = p.Icon + " " + name
		}
		style := inactiveStyle
		if i == activeIdx {
			style = activeStyle
		}
		label := style.Render(name)
		if i < 9 {
			label = keyStyle.Render(string(rune('1'+i))+" ") + label
		}
		labels.WriteString(lipgloss.PlaceHorizontal(widths[i], lipgloss.Center, label,
			lipgloss.WithWhitespaceBackground(bg)))
	}

	return labels.String() + "\n" + renderIndicator(widths, ind, width, bg)
}

func renderIndicator(widths []int, ind Indicator, width int, bg lipgloss.Color) string {
	t := theme.Active
	if len(widths) == 0 || width <= 0 {
		return ""
	}

	slot := float64(width) / float64(len(widths))
	scale := ind.Scale
	if scale <= 0 {
		scale = 1
	}
	barW := int(math.Round(slot / 2 * scale))
	barW = max(1, min(barW, width))
	center := ind.Offset + slot/2
	start := int(math.Round(center - float64(barW)/2))
	start = max(0, min(start, width-barW))

	space := lipgloss.NewStyle().Background(bg)
	bar := lipgloss.NewStyle().Foreground(t.AccentBright).Background(bg)

	return space.Render(strings.Repeat(" ", start)) +
		bar.Render(strings.Repeat("━", barW)) +
		space.Render(strings.Repeat(" ", width-start-barW))
}
