package cli

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{300 * time.Millisecond, "300ms"},
		{45 * time.Second, "45s"},
		{125 * time.Second, "2m"},
		{3725 * time.Second, "1h 2m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatAgo(now, now); got != "just now" {
		t.Fatalf("FormatAgo(now) = %q", got)
	}
	if got := FormatAgo(now.Add(-5*time.Minute), now); got != "5m ago" {
		t.Fatalf("FormatAgo(-5m) = %q", got)
	}
}

func TestClampProgress(t *testing.T) {
	if got := ClampProgress(7, 4); got != 3 {
		t.Fatalf("ClampProgress(7, 4) = %v, want 3", got)
	}
	if got := ClampProgress(math.NaN(), 4); got != 0 {
		t.Fatalf("ClampProgress(NaN, 4) = %v, want 0", got)
	}
	if got := FormatProgress(1.5); got != "1.50" {
		t.Fatalf("FormatProgress(1.5) = %q", got)
	}
}

func TestFormatIndexMove(t *testing.T) {
	if got := FormatIndexMove(1, 3); got != "1 → 3" {
		t.Fatalf("FormatIndexMove(1, 3) = %q", got)
	}
	if got := FormatIndexMove(2, 2); got != "2" {
		t.Fatalf("FormatIndexMove(2, 2) = %q", got)
	}
}

func TestRenderTableAlignsStyledCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Page", "Index"},
		Rows: [][]string{
			{RenderPageMarker(true) + " wallet", "1"},
			{"budget", "12"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("table has %d lines, want 6:\n%s", len(lines), out)
	}
	for i, line := range lines[1:] {
		if w, first := ansi.StringWidth(line), ansi.StringWidth(lines[0]); w != first {
			t.Fatalf("line %d width %d, want %d:\n%s", i+1, w, first, out)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	if got := RenderProgressBar(1, 1, 10); got != "" {
		t.Fatalf("single page bar = %q, want empty", got)
	}
	bar := RenderProgressBar(3, 4, 10)
	if !strings.Contains(bar, "3.00") {
		t.Fatalf("bar %q missing progress label", bar)
	}
}
