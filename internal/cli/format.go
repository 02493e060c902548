// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"
)

// FormatProgress formats fractional page progress with two decimals.
// e.g., 1.5 -> "1.50"
func FormatProgress(p float64) string {
	if math.IsNaN(p) {
		return "-"
	}
	return fmt.Sprintf("%.2f", p)
}

// ClampProgress bounds p to [0, count-1].
func ClampProgress(p float64, count int) float64 {
	if math.IsNaN(p) || count < 1 {
		return 0
	}
	return math.Max(0, math.Min(p, float64(count-1)))
}

// FormatDuration formats a duration into a short human-readable string.
// e.g., 3725s -> "1h 2m", 125s -> "2m", 45s -> "45s", 300ms -> "300ms"
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	secs := int64(d / time.Second)
	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatAgo formats the time elapsed since t relative to now.
// e.g., "just now", "5m ago", "2h 3m ago"
func FormatAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	return FormatDuration(d) + " ago"
}

// FormatIndexMove formats a settle as "from → to", or just the index when unchanged.
func FormatIndexMove(from, to int) string {
	if from == to {
		return fmt.Sprintf("%d", to)
	}
	return fmt.Sprintf("%d → %d", from, to)
}
