package nav

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Bounce configures the indicator's grow-then-spring-back micro-interaction.
type Bounce struct {
	Peak      float64       // scale reached at the end of the grow phase
	Grow      time.Duration // linear grow duration
	Frequency float64       // spring angular frequency
	Damping   float64       // spring damping ratio
}

// DefaultBounce grows to 1.2 over 150ms, then springs back with the feel of
// a stiffness 200 / damping 12 spring.
func DefaultBounce() Bounce {
	return Bounce{Peak: 1.2, Grow: 150 * time.Millisecond, Frequency: 14.1, Damping: 0.42}
}

type bouncePhase int

const (
	bounceIdle bouncePhase = iota
	bounceGrow
	bounceSpring
)

const springEpsilon = 1e-3

// IndicatorFollower positions the tab-bar indicator. Position follows the
// progress feed every frame; the scale bounce runs only after a settle that
// changed the page, so it never depends on gesture velocity.
type IndicatorFollower struct {
	progress  *ProgressTracker
	index     *IndexStore
	pageWidth float64

	cfg     Bounce
	spring  harmonica.Spring
	frame   time.Duration
	pending time.Duration

	phase    bouncePhase
	elapsed  time.Duration
	growFrom float64
	scale    float64
	velocity float64
}

// NewIndicatorFollower returns a follower. progress may be nil, in which case
// the offset follows the settled index only.
func NewIndicatorFollower(progress *ProgressTracker, index *IndexStore, cfg Bounce, fps int) *IndicatorFollower {
	if fps <= 0 {
		fps = 60
	}
	return &IndicatorFollower{
		progress: progress,
		index:    index,
		cfg:      cfg,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), cfg.Frequency, cfg.Damping),
		frame:    time.Second / time.Duration(fps),
		scale:    1,
	}
}

// SetPageWidth sets the width of one tab slot. Zero disables the bounce.
func (f *IndicatorFollower) SetPageWidth(w float64) {
	if w < 0 {
		w = 0
	}
	f.pageWidth = w
}

// PageWidth returns the slot width.
func (f *IndicatorFollower) PageWidth() float64 { return f.pageWidth }

// Offset returns the indicator's leading edge.
func (f *IndicatorFollower) Offset() float64 {
	if f.progress != nil {
		return f.progress.Value() * f.pageWidth
	}
	return float64(f.index.Active()) * f.pageWidth
}

// Scale returns the current bounce scale; 1 at rest.
func (f *IndicatorFollower) Scale() float64 { return f.scale }

// Animating reports whether a bounce is in progress.
func (f *IndicatorFollower) Animating() bool { return f.phase != bounceIdle }

// Settled starts the bounce for a settle that changed the page.
func (f *IndicatorFollower) Settled(ev SettleEvent) {
	if !ev.Changed() || f.pageWidth <= 0 {
		return
	}
	f.phase = bounceGrow
	f.elapsed = 0
	f.growFrom = f.scale
	f.velocity = 0
}

// Advance runs the bounce forward by dt.
func (f *IndicatorFollower) Advance(dt time.Duration) {
	if f.phase == bounceIdle || dt <= 0 {
		return
	}
	if f.phase == bounceGrow {
		f.elapsed += dt
		t := 1.0
		if f.cfg.Grow > 0 {
			t = math.Min(1, float64(f.elapsed)/float64(f.cfg.Grow))
		}
		f.scale = f.growFrom + (f.cfg.Peak-f.growFrom)*t
		if t < 1 {
			return
		}
		f.phase = bounceSpring
		f.pending = 0
		return
	}

	f.pending += dt
	for f.pending >= f.frame {
		f.pending -= f.frame
		f.scale, f.velocity = f.spring.Update(f.scale, f.velocity, 1)
		if math.Abs(f.scale-1) < springEpsilon && math.Abs(f.velocity) < springEpsilon {
			f.scale, f.velocity = 1, 0
			f.phase = bounceIdle
			return
		}
	}
}
