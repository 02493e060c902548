package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Fatalf("ByName(nope) = %s, want %s", got, FlexokiDark.Name)
	}
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Fatalf("ByName(tokyo-night) = %s", got)
	}
	if len(Names()) != len(All) {
		t.Fatalf("Names len = %d, want %d", len(Names()), len(All))
	}
}

func TestFadeBlends(t *testing.T) {
	fg := lipgloss.Color("#ffffff")
	bg := lipgloss.Color("#000000")
	tests := []struct {
		opacity float64
		want    lipgloss.Color
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{0.5, "#808080"},
		{2, "#ffffff"},
	}
	for _, tt := range tests {
		if got := Fade(fg, bg, tt.opacity); got != tt.want {
			t.Fatalf("Fade(%v) = %s, want %s", tt.opacity, got, tt.want)
		}
	}
	if got := Fade("3", bg, 0.5); got != "3" {
		t.Fatalf("Fade with ANSI color = %s, want passthrough", got)
	}
}

func TestTextOnPicksContrast(t *testing.T) {
	th := FlexokiDark
	if got := th.TextOn("#E3F2FD"); got != "#100F0F" {
		t.Fatalf("TextOn(light) = %s, want dark text", got)
	}
	if got := th.TextOn("#132F4C"); got != th.TextPrimary {
		t.Fatalf("TextOn(dark) = %s, want primary", got)
	}
}
