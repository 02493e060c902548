package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/pagesync/internal/model"
	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

var testPages = model.Pages{
	{Name: "balance", Title: "Balance", Route: "/balance"},
	{Name: "wallet", Title: "Wallet", Route: "/"},
	{Name: "statistics", Title: "Statistics", Route: "/statistics"},
}

func TestLayoutRowSumsToWidth(t *testing.T) {
	widths := LayoutRow(80, 3)
	if widths[0] != 27 || widths[1] != 27 || widths[2] != 26 {
		t.Fatalf("LayoutRow(80, 3) = %v, want [27 27 26]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with zero items should be nil")
	}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	width := 80
	pos := 0
	for i, w := range TabWidths(testPages, width) {
		for _, x := range []int{pos, pos + w/2, pos + w - 1} {
			if got := TabAtX(testPages, width, x); got != i {
				t.Fatalf("TabAtX(%d) = %d, want %d", x, got, i)
			}
		}
		pos += w
	}
	if got := TabAtX(testPages, width, width); got != -1 {
		t.Fatalf("TabAtX past the end = %d, want -1", got)
	}
	if got := TabAtX(testPages, width, -1); got != -1 {
		t.Fatalf("TabAtX(-1) = %d, want -1", got)
	}
}

func TestRenderTabBarFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := RenderTabBar(testPages, 1, Indicator{Offset: 20, Scale: 1}, 60, lipgloss.Color("#132F4C"))
	lines := strings.Split(out, "\n")
	if len(lines) != TabBarHeight {
		t.Fatalf("tab bar has %d lines, want %d", len(lines), TabBarHeight)
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != 60 {
			t.Fatalf("line %d width = %d, want 60", i, w)
		}
	}
}

func TestIndicatorFollowsOffsetAndScale(t *testing.T) {
	widths := []int{20, 20, 20}
	bg := lipgloss.Color("#000000")

	at := func(ind Indicator) (start, length int) {
		plain := ansi.Strip(renderIndicator(widths, ind, 60, bg))
		start = strings.Index(plain, "━")
		length = strings.Count(plain, "━")
		return start, length
	}

	start, length := at(Indicator{Offset: 0, Scale: 1})
	if start != 5 || length != 10 {
		t.Fatalf("page 0 indicator = (%d, %d), want (5, 10)", start, length)
	}
	start, _ = at(Indicator{Offset: 30, Scale: 1})
	if start != 35 {
		t.Fatalf("progress 1.5 indicator start = %d, want 35", start)
	}
	_, length = at(Indicator{Offset: 20, Scale: 1.2})
	if length != 12 {
		t.Fatalf("bounced indicator length = %d, want 12", length)
	}
	start, _ = at(Indicator{Offset: 500, Scale: 1})
	if start != 50 {
		t.Fatalf("clamped indicator start = %d, want 50", start)
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")
	bg := lipgloss.Color("#132F4C")

	shortCard := ContentCard("Short", "Content", 22, bg)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22, bg)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard}, bg)
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Fatalf("Line %d has NO ANSI codes - padding is unstyled: %q", i, lines[i])
		}
	}
}

func TestPageTrackWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	out := PageTrack(1.5, 4, 40)
	if w := ansi.StringWidth(out); w != 40 {
		t.Fatalf("PageTrack width = %d, want 40", w)
	}
	if !strings.Contains(ansi.Strip(out), "1.50/3") {
		t.Fatalf("PageTrack label missing: %q", ansi.Strip(out))
	}
}
