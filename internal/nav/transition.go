package nav

// Source tags where a transition came from. Route write-back is gated on it.
type Source int

const (
	// SourceGesture is a user drag or swipe.
	SourceGesture Source = iota + 1
	// SourceTap is a discrete tab selection.
	SourceTap
	// SourceExternal is a route change made by the routing host (deep link, drawer, back).
	SourceExternal
)

func (s Source) String() string {
	switch s {
	case SourceGesture:
		return "gesture"
	case SourceTap:
		return "tap"
	case SourceExternal:
		return "external"
	}
	return "unknown"
}

// WritesRoute reports whether a settle from this source must be written back
// to the routing host. External moves never are: the host already holds the route.
func (s Source) WritesRoute() bool {
	return s == SourceGesture || s == SourceTap
}

// ParseSource is the inverse of Source.String. Unknown names return 0, false.
func ParseSource(name string) (Source, bool) {
	for _, s := range []Source{SourceGesture, SourceTap, SourceExternal} {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// State is the engine-level navigation state.
type State int

const (
	StateIdle State = iota
	StateGestureActive
	StateProgrammaticAnimating
	StateSettling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGestureActive:
		return "gesture-active"
	case StateProgrammaticAnimating:
		return "animating"
	case StateSettling:
		return "settling"
	}
	return "unknown"
}

// Transition is one gesture or programmatic move. It lives from start to settle.
type Transition struct {
	ID     uint64
	Source Source
	From   int
	// Target is the destination for programmatic moves; -1 for a gesture
	// until it settles.
	Target int
}

// SettleEvent is emitted once per completed transition. Route and
// RouteWritten are filled in by the engine after write-back.
type SettleEvent struct {
	Transition   Transition
	Index        int
	Previous     int
	Route        string
	RouteWritten bool
}

// Changed reports whether the settle moved to a different page.
func (e SettleEvent) Changed() bool { return e.Index != e.Previous }

// NavigationState is a snapshot of the engine's observable values.
type NavigationState struct {
	ActiveIndex int     `json:"active_index"`
	Progress    float64 `json:"progress"`
	State       string  `json:"state"`
}
