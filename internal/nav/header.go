package nav

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

const (
	headerFade        = 300 * time.Millisecond
	titleStartOffset  = 10.0
	actionStartOpaque = 0.5
)

// HeaderTransition is the header micro-interaction played on a page change:
// the title fades in while sliding into place and the action buttons brighten.
type HeaderTransition struct {
	spring  harmonica.Spring
	frame   time.Duration
	pending time.Duration

	active        bool
	elapsed       time.Duration
	titleOpacity  float64
	titleOffset   float64
	titleVelocity float64
	actionOpacity float64
}

// NewHeaderTransition returns a header at rest.
func NewHeaderTransition(fps int) *HeaderTransition {
	if fps <= 0 {
		fps = 60
	}
	return &HeaderTransition{
		spring:        harmonica.NewSpring(harmonica.FPS(fps), 10, 0.6),
		frame:         time.Second / time.Duration(fps),
		titleOpacity:  1,
		actionOpacity: 1,
	}
}

// Settled restarts the transition when the page changed.
func (h *HeaderTransition) Settled(ev SettleEvent) {
	if !ev.Changed() {
		return
	}
	h.active = true
	h.elapsed = 0
	h.pending = 0
	h.titleOpacity = 0
	h.titleOffset = titleStartOffset
	h.titleVelocity = 0
	h.actionOpacity = actionStartOpaque
}

// Advance moves the transition forward by dt.
func (h *HeaderTransition) Advance(dt time.Duration) {
	if !h.active || dt <= 0 {
		return
	}
	h.elapsed += dt
	t := math.Min(1, float64(h.elapsed)/float64(headerFade))
	h.titleOpacity = t
	h.actionOpacity = actionStartOpaque + (1-actionStartOpaque)*t

	h.pending += dt
	for h.pending >= h.frame {
		h.pending -= h.frame
		h.titleOffset, h.titleVelocity = h.spring.Update(h.titleOffset, h.titleVelocity, 0)
	}
	if t >= 1 && math.Abs(h.titleOffset) < springEpsilon*10 && math.Abs(h.titleVelocity) < springEpsilon*10 {
		h.titleOffset, h.titleVelocity = 0, 0
		h.active = false
	}
}

// Animating reports whether the transition is still running.
func (h *HeaderTransition) Animating() bool { return h.active }

// TitleOpacity is 0 (hidden) to 1 (fully shown).
func (h *HeaderTransition) TitleOpacity() float64 { return h.titleOpacity }

// TitleOffset is the title's remaining slide distance; 0 at rest.
func (h *HeaderTransition) TitleOffset() float64 { return h.titleOffset }

// ActionOpacity is the action buttons' opacity.
func (h *HeaderTransition) ActionOpacity() float64 { return h.actionOpacity }
