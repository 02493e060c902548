package nav

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Surface owns the swipeable page list. It reports continuous progress while a
// transition is in flight and emits exactly one settle per transition.
type Surface struct {
	progress *ProgressTracker
	count    int
	settled  int
	duration time.Duration

	state     State
	active    *Transition
	nextID    uint64
	direction float64
	anim      jumpAnimation

	onSettle func(SettleEvent)
	logger   *slog.Logger
}

type jumpAnimation struct {
	from, to float64
	duration time.Duration
	elapsed  time.Duration
}

// NewSurface returns an idle surface resting on initial. duration bounds
// animated jumps; zero or less makes every jump immediate.
func NewSurface(progress *ProgressTracker, count, initial int, duration time.Duration, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	progress.Set(float64(initial))
	return &Surface{
		progress: progress,
		count:    count,
		settled:  initial,
		duration: duration,
		logger:   logger,
	}
}

// OnSettle sets the single settle sink. The engine uses it to enforce the
// settle → commit → route write ordering.
func (s *Surface) OnSettle(fn func(SettleEvent)) { s.onSettle = fn }

// State returns the current state.
func (s *Surface) State() State { return s.state }

// Active returns the in-flight transition, if any.
func (s *Surface) Active() (Transition, bool) {
	if s.active == nil {
		return Transition{}, false
	}
	return *s.active, true
}

// Settled returns the index the surface last came to rest on.
func (s *Surface) Settled() int { return s.settled }

// SetDuration changes the animated jump duration for future jumps. A running
// animation keeps the duration it started with.
func (s *Surface) SetDuration(d time.Duration) { s.duration = d }

// BeginGesture starts a gesture transition.
func (s *Surface) BeginGesture() error {
	if s.state != StateIdle {
		return s.conflict("begin gesture", SourceGesture)
	}
	s.start(SourceGesture, -1)
	s.direction = 0
	s.state = StateGestureActive
	return nil
}

// UpdateGesture forwards a drag position to the progress tracker.
func (s *Surface) UpdateGesture(p float64) error {
	if s.state != StateGestureActive {
		return ErrNoGesture
	}
	prev := s.progress.Value()
	s.progress.Set(p)
	if d := s.progress.Value() - prev; d != 0 {
		s.direction = math.Copysign(1, d)
	}
	return nil
}

// SettleGesture ends the gesture on the nearest page. velocity carries the
// direction of travel at release; zero falls back to the last drag direction.
func (s *Surface) SettleGesture(velocity float64) (int, error) {
	if s.state != StateGestureActive {
		return s.settled, ErrNoGesture
	}
	dir := s.direction
	if velocity != 0 {
		dir = math.Copysign(1, velocity)
	}
	index := resolveSettle(s.progress.Value(), dir, s.count)
	s.settle(index)
	return index, nil
}

// JumpTo moves programmatically. A non-animated jump is a correction: progress
// and index change in one step and repeating it is a no-op. An animated jump
// eases progress toward index over the configured duration via Advance.
func (s *Surface) JumpTo(index int, animate bool, source Source) error {
	if index < 0 || index >= s.count {
		return fmt.Errorf("%w: jump to %d not in [0, %d]", ErrInvalidIndex, index, s.count-1)
	}
	if s.state != StateIdle {
		return s.conflict("jump", source)
	}

	if !animate || s.duration <= 0 {
		if index == s.settled && s.progress.Value() == float64(index) {
			return nil
		}
		s.start(source, index)
		s.settle(index)
		return nil
	}

	if index == s.settled {
		return nil
	}
	s.start(source, index)
	s.anim = jumpAnimation{from: s.progress.Value(), to: float64(index), duration: s.duration}
	s.state = StateProgrammaticAnimating
	return nil
}

// Advance moves an animated jump forward by one frame of length dt.
func (s *Surface) Advance(dt time.Duration) {
	if s.state != StateProgrammaticAnimating || dt <= 0 {
		return
	}
	s.anim.elapsed += dt
	t := float64(s.anim.elapsed) / float64(s.anim.duration)
	if t >= 1 {
		s.settle(s.active.Target)
		return
	}
	s.progress.Set(s.anim.from + (s.anim.to-s.anim.from)*easeInOutCubic(t))
}

func (s *Surface) start(source Source, target int) {
	s.nextID++
	s.active = &Transition{
		ID:     s.nextID,
		Source: source,
		From:   s.settled,
		Target: target,
	}
}

func (s *Surface) settle(index int) {
	tr := *s.active
	tr.Target = index
	s.state = StateSettling
	defer func() {
		s.active = nil
		s.state = StateIdle
	}()

	s.progress.Set(float64(index))
	ev := SettleEvent{Transition: tr, Index: index, Previous: s.settled}
	s.settled = index
	if s.onSettle != nil {
		s.onSettle(ev)
	}
}

func (s *Surface) conflict(op string, source Source) error {
	attrs := []any{"op", op, "source", source.String(), "state", s.state.String()}
	if s.active != nil {
		attrs = append(attrs, "active_source", s.active.Source.String(), "active_id", s.active.ID)
	}
	s.logger.Debug("transition rejected", attrs...)
	return fmt.Errorf("%s (%s) while %s: %w", op, source, s.state, ErrTransitionConflict)
}

// resolveSettle rounds p to the nearest page. An exact half rounds in the
// direction of travel; with no direction it rounds up.
func resolveSettle(p, dir float64, count int) int {
	base := math.Floor(p)
	frac := p - base
	index := int(base)
	switch {
	case frac > 0.5:
		index++
	case frac == 0.5 && dir >= 0:
		index++
	}
	if index < 0 {
		index = 0
	}
	if index > count-1 {
		index = count - 1
	}
	return index
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := 2*t - 2
	return 1 + f*f*f/2
}
