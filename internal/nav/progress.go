package nav

// ProgressTracker holds the fractional position across the ordered pages.
// Writes are clamped to [0, N-1]; unchanged writes notify nobody.
type ProgressTracker struct {
	max   float64
	value *Value[float64]
}

// NewProgressTracker returns a tracker for pageCount pages starting at initial.
func NewProgressTracker(pageCount int, initial float64) *ProgressTracker {
	last := float64(pageCount - 1)
	if last < 0 {
		last = 0
	}
	p := &ProgressTracker{max: last}
	p.value = NewValue(p.clamp(initial))
	return p
}

// Set clamps v and stores it.
func (p *ProgressTracker) Set(v float64) {
	p.value.Set(p.clamp(v))
}

// Value returns the current progress.
func (p *ProgressTracker) Value() float64 { return p.value.Get() }

// Max returns N-1.
func (p *ProgressTracker) Max() float64 { return p.max }

// Subscribe is notified on every change. Consumers bound to a frame rate
// throttle themselves.
func (p *ProgressTracker) Subscribe(fn func(float64)) func() {
	return p.value.Subscribe(fn)
}

func (p *ProgressTracker) clamp(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > p.max:
		return p.max
	}
	return v
}
