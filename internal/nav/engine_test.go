package nav

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/theirongolddev/pagesync/internal/model"
)

const frame = 16 * time.Millisecond

func testPages() model.Pages {
	return model.Pages{
		{Name: "p0", Title: "Zero", Route: "/p0", ColorLight: "#000000", ColorDark: "#000000"},
		{Name: "p1", Title: "One", Route: "/p1", ColorLight: "#ffffff", ColorDark: "#ffffff"},
		{Name: "p2", Title: "Two", Route: "/p2", ColorLight: "#ff0000", ColorDark: "#ff0000"},
		{Name: "p3", Title: "Three", Route: "/p3", ColorLight: "#0000ff", ColorDark: "#0000ff"},
	}
}

// fakeHost behaves like a real router: Replace updates the path and, when
// wired, notifies the engine just as a user-driven route change would.
type fakeHost struct {
	path     string
	replaced []string
	notify   func(string) error
}

func (h *fakeHost) Path() string { return h.path }

func (h *fakeHost) Replace(path string) {
	h.replaced = append(h.replaced, path)
	if path == h.path {
		return
	}
	h.path = path
	if h.notify != nil {
		_ = h.notify(path)
	}
}

// navigate is a user-driven route change made on the host side.
func (h *fakeHost) navigate(t *testing.T, path string) {
	t.Helper()
	h.path = path
	if h.notify != nil {
		if err := h.notify(path); err != nil {
			t.Fatalf("RouteChanged(%q): %v", path, err)
		}
	}
}

type countingHaptics struct{ n int }

func (c *countingHaptics) Selection() { c.n++ }

func newTestEngine(t *testing.T, host *fakeHost) *Engine {
	t.Helper()
	e, err := New(Options{
		Pages:       testPages(),
		Host:        host,
		TapDuration: 300 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	host.notify = e.RouteChanged
	return e
}

func runUntilIdle(t *testing.T, e *Engine) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if e.State() == StateIdle {
			return
		}
		e.Advance(frame)
	}
	t.Fatalf("engine still %s after 1000 frames", e.State())
}

func collectSettles(e *Engine) *[]SettleEvent {
	var events []SettleEvent
	e.OnSettle(func(ev SettleEvent) { events = append(events, ev) })
	return &events
}

func TestNewResolvesInitialRouteWithoutWriting(t *testing.T) {
	host := &fakeHost{path: "/p2"}
	e := newTestEngine(t, host)

	if e.ActiveIndex() != 2 {
		t.Fatalf("ActiveIndex = %d, want 2", e.ActiveIndex())
	}
	if e.Progress() != 2 {
		t.Fatalf("Progress = %v, want 2", e.Progress())
	}
	if len(host.replaced) != 0 {
		t.Fatalf("construction wrote routes %v, want none", host.replaced)
	}
}

func TestNewRejectsInvalidPages(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("New with no pages returned nil error")
	}
	pages := testPages()
	pages[1].Route = pages[0].Route
	if _, err := New(Options{Pages: pages}); err == nil {
		t.Fatal("New with duplicate routes returned nil error")
	}
}

func TestRouteRoundTrip(t *testing.T) {
	host := &fakeHost{path: "/"}
	e := newTestEngine(t, host)

	for k, p := range testPages() {
		host.navigate(t, p.Route)
		if e.ActiveIndex() != k {
			t.Fatalf("after %s ActiveIndex = %d, want %d", p.Route, e.ActiveIndex(), k)
		}
		if e.Progress() != float64(k) {
			t.Fatalf("after %s Progress = %v, want %d", p.Route, e.Progress(), k)
		}
	}
	if len(host.replaced) != 0 {
		t.Fatalf("external navigation wrote routes %v, want none", host.replaced)
	}
}

func TestExternalRouteChangeNeverEchoes(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	events := collectSettles(e)

	host.navigate(t, "/p3")
	host.navigate(t, "/p1?tab=x#frag")
	host.navigate(t, "/p1/")

	if len(host.replaced) != 0 {
		t.Fatalf("Replace called %d times, want 0", len(host.replaced))
	}
	if e.RouteWrites() != 0 {
		t.Fatalf("RouteWrites = %d, want 0", e.RouteWrites())
	}
	if len(*events) != 2 {
		t.Fatalf("settles = %d, want 2", len(*events))
	}
	for _, ev := range *events {
		if ev.Transition.Source != SourceExternal || ev.RouteWritten {
			t.Fatalf("settle %+v, want external without write", ev)
		}
	}
}

func TestNonAnimatedJumpIsIdempotent(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	events := collectSettles(e)
	var commits int
	e.OnIndex(func(int) { commits++ })

	for i := 0; i < 3; i++ {
		if err := e.JumpTo(2, false, SourceExternal); err != nil {
			t.Fatalf("JumpTo #%d: %v", i, err)
		}
	}
	if len(*events) != 1 {
		t.Fatalf("settles = %d, want 1", len(*events))
	}
	if commits != 1 {
		t.Fatalf("index notifications = %d, want 1", commits)
	}
}

func TestJumpToInvalidIndexMutatesNothing(t *testing.T) {
	host := &fakeHost{path: "/p1"}
	e := newTestEngine(t, host)
	events := collectSettles(e)

	for _, idx := range []int{-1, 4, 100} {
		err := e.JumpTo(idx, false, SourceExternal)
		if !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("JumpTo(%d) err = %v, want ErrInvalidIndex", idx, err)
		}
		if err := e.Tap(idx); !errors.Is(err, ErrInvalidIndex) {
			t.Fatalf("Tap(%d) err = %v, want ErrInvalidIndex", idx, err)
		}
	}
	if e.ActiveIndex() != 1 || e.Progress() != 1 || e.State() != StateIdle {
		t.Fatalf("state changed to %+v", e.Snapshot())
	}
	if len(*events) != 0 {
		t.Fatalf("settles = %d, want 0", len(*events))
	}
}

func TestUnroutablePathFallsBackToDefault(t *testing.T) {
	host := &fakeHost{path: "/p2"}
	e := newTestEngine(t, host)

	if err := e.RouteChanged("/nowhere"); err != nil {
		t.Fatalf("RouteChanged(/nowhere): %v", err)
	}
	if e.ActiveIndex() != 0 {
		t.Fatalf("ActiveIndex = %d, want default 0", e.ActiveIndex())
	}
	if len(host.replaced) != 0 {
		t.Fatalf("fallback wrote routes %v, want none", host.replaced)
	}
}

func TestGestureSettleRounding(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		drag     []float64
		velocity float64
		want     int
	}{
		{name: "past half forward", start: "/p1", drag: []float64{1.3, 1.6}, velocity: 1, want: 2},
		{name: "short of half forward", start: "/p1", drag: []float64{1.2, 1.4}, velocity: 1, want: 1},
		{name: "exact half forward", start: "/p1", drag: []float64{1.2, 1.5}, velocity: 1, want: 2},
		{name: "exact half backward", start: "/p2", drag: []float64{1.8, 1.5}, velocity: -1, want: 1},
		{name: "exact half uses drag direction", start: "/p2", drag: []float64{1.8, 1.5}, velocity: 0, want: 1},
		{name: "overscroll clamps", start: "/p3", drag: []float64{3.4, 9}, velocity: 2, want: 3},
		{name: "underscroll clamps", start: "/p0", drag: []float64{-2}, velocity: -2, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{path: tt.start}
			e := newTestEngine(t, host)

			if err := e.BeginGesture(); err != nil {
				t.Fatalf("BeginGesture: %v", err)
			}
			for _, p := range tt.drag {
				if err := e.UpdateGesture(p); err != nil {
					t.Fatalf("UpdateGesture(%v): %v", p, err)
				}
			}
			got, err := e.EndGesture(tt.velocity)
			if err != nil {
				t.Fatalf("EndGesture: %v", err)
			}
			if got != tt.want {
				t.Fatalf("settled on %d, want %d", got, tt.want)
			}
			if e.ActiveIndex() != tt.want || e.Progress() != float64(tt.want) {
				t.Fatalf("snapshot %+v, want index and progress %d", e.Snapshot(), tt.want)
			}
		})
	}
}

func TestGestureProgressIsContinuousWhileIndexHolds(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	var commits []int
	e.OnIndex(func(i int) { commits = append(commits, i) })

	if err := e.BeginGesture(); err != nil {
		t.Fatalf("BeginGesture: %v", err)
	}
	for _, p := range []float64{0.2, 0.9, 1.7, 2.1} {
		if err := e.UpdateGesture(p); err != nil {
			t.Fatalf("UpdateGesture: %v", err)
		}
		if e.Progress() != p {
			t.Fatalf("Progress = %v, want %v", e.Progress(), p)
		}
		if e.ActiveIndex() != 0 {
			t.Fatalf("ActiveIndex changed mid-gesture to %d", e.ActiveIndex())
		}
	}
	if _, err := e.EndGesture(1); err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	if len(commits) != 1 || commits[0] != 2 {
		t.Fatalf("commits = %v, want [2]", commits)
	}
}

func TestGestureUpdateWithoutBegin(t *testing.T) {
	e := newTestEngine(t, &fakeHost{path: "/p0"})
	if err := e.UpdateGesture(1); !errors.Is(err, ErrNoGesture) {
		t.Fatalf("UpdateGesture err = %v, want ErrNoGesture", err)
	}
	if _, err := e.EndGesture(0); !errors.Is(err, ErrNoGesture) {
		t.Fatalf("EndGesture err = %v, want ErrNoGesture", err)
	}
}

func TestGestureRejectedDuringTapAnimation(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	events := collectSettles(e)

	if err := e.Tap(2); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	e.Advance(frame)
	if e.State() != StateProgrammaticAnimating {
		t.Fatalf("State = %s, want animating", e.State())
	}
	if err := e.BeginGesture(); !errors.Is(err, ErrTransitionConflict) {
		t.Fatalf("BeginGesture err = %v, want ErrTransitionConflict", err)
	}
	if err := e.JumpTo(3, true, SourceTap); !errors.Is(err, ErrTransitionConflict) {
		t.Fatalf("JumpTo err = %v, want ErrTransitionConflict", err)
	}

	runUntilIdle(t, e)
	if e.ActiveIndex() != 2 || e.Progress() != 2 {
		t.Fatalf("snapshot %+v, want settled on 2", e.Snapshot())
	}
	if len(*events) != 1 {
		t.Fatalf("settles = %d, want 1", len(*events))
	}
	if got := host.replaced; len(got) != 1 || got[0] != "/p2" {
		t.Fatalf("Replace calls = %v, want [/p2]", got)
	}
}

func TestTapAnimatesWithoutEarlyCommit(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	haptics := &countingHaptics{}
	e.haptics = haptics

	if err := e.Tap(3); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	prev := e.Progress()
	for e.State() == StateProgrammaticAnimating {
		e.Advance(frame)
		if e.State() != StateIdle {
			if e.ActiveIndex() != 0 {
				t.Fatalf("ActiveIndex = %d mid-animation, want 0", e.ActiveIndex())
			}
			if e.Progress() < prev {
				t.Fatalf("progress went backwards: %v < %v", e.Progress(), prev)
			}
			prev = e.Progress()
		}
	}
	if e.ActiveIndex() != 3 {
		t.Fatalf("ActiveIndex = %d, want 3", e.ActiveIndex())
	}
	if haptics.n != 1 {
		t.Fatalf("haptic selections = %d, want 1", haptics.n)
	}
}

func TestTapDurationChangeKeepsRunningAnimation(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)

	if err := e.Tap(2); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	e.Advance(150 * time.Millisecond)
	mid := e.Progress()
	if math.Abs(mid-1) > 1e-9 {
		t.Fatalf("progress at half time = %v, want 1", mid)
	}

	e.SetTapDuration(3 * time.Second)
	e.Advance(time.Millisecond)
	if p := e.Progress(); p < mid || p > mid+0.1 {
		t.Fatalf("progress after duration change = %v, want just past %v", p, mid)
	}

	e.Advance(150 * time.Millisecond)
	if e.State() != StateIdle || e.ActiveIndex() != 2 {
		t.Fatalf("state = %s index = %d, want idle on 2 after the original duration", e.State(), e.ActiveIndex())
	}
}

func TestTapOnActivePageIsNoop(t *testing.T) {
	host := &fakeHost{path: "/p1"}
	e := newTestEngine(t, host)
	haptics := &countingHaptics{}
	e.haptics = haptics
	events := collectSettles(e)

	if err := e.Tap(1); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if e.State() != StateIdle || len(*events) != 0 || haptics.n != 0 || len(host.replaced) != 0 {
		t.Fatalf("tap on active page had effects: state=%s settles=%d haptics=%d writes=%v",
			e.State(), len(*events), haptics.n, host.replaced)
	}
}

func TestRouteChangeDuringGestureIsDropped(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)

	if err := e.BeginGesture(); err != nil {
		t.Fatalf("BeginGesture: %v", err)
	}
	if err := e.UpdateGesture(0.8); err != nil {
		t.Fatalf("UpdateGesture: %v", err)
	}
	host.path = "/p3"
	if err := e.RouteChanged("/p3"); !errors.Is(err, ErrTransitionConflict) {
		t.Fatalf("RouteChanged err = %v, want ErrTransitionConflict", err)
	}
	if _, err := e.EndGesture(1); err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	if e.ActiveIndex() != 1 {
		t.Fatalf("ActiveIndex = %d, want 1", e.ActiveIndex())
	}
	if host.path != "/p1" {
		t.Fatalf("host path = %q, want /p1 after write-back", host.path)
	}
}

func TestSettleOrderCommitThenRouteThenSubscribers(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)

	var seen []string
	e.OnIndex(func(int) {
		if len(host.replaced) != 0 {
			seen = append(seen, "index after route")
			return
		}
		seen = append(seen, "index")
	})
	e.OnSettle(func(ev SettleEvent) {
		if e.ActiveIndex() != ev.Index {
			t.Errorf("subscriber saw ActiveIndex %d, want %d", e.ActiveIndex(), ev.Index)
		}
		if host.path != ev.Route {
			t.Errorf("subscriber saw host path %q, want %q", host.path, ev.Route)
		}
		seen = append(seen, "settle")
	})

	if err := e.BeginGesture(); err != nil {
		t.Fatalf("BeginGesture: %v", err)
	}
	_ = e.UpdateGesture(1.9)
	if _, err := e.EndGesture(1); err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	if len(seen) != 2 || seen[0] != "index" || seen[1] != "settle" {
		t.Fatalf("order = %v, want [index settle]", seen)
	}
}

func TestFourPageScenario(t *testing.T) {
	host := &fakeHost{path: "/"}
	e := newTestEngine(t, host)
	events := collectSettles(e)

	if e.ActiveIndex() != 0 {
		t.Fatalf("initial ActiveIndex = %d, want 0", e.ActiveIndex())
	}

	host.navigate(t, "/p2")
	if len(*events) != 1 {
		t.Fatalf("settles after route change = %d, want 1", len(*events))
	}
	if ev := (*events)[0]; ev.Transition.Source != SourceExternal || ev.Index != 2 {
		t.Fatalf("settle = %+v, want external jump to 2", ev)
	}
	if e.ActiveIndex() != 2 || len(host.replaced) != 0 {
		t.Fatalf("ActiveIndex = %d writes = %v, want 2 and none", e.ActiveIndex(), host.replaced)
	}

	if err := e.BeginGesture(); err != nil {
		t.Fatalf("BeginGesture: %v", err)
	}
	_ = e.UpdateGesture(2.3)
	_ = e.UpdateGesture(2.7)
	got, err := e.EndGesture(1.2)
	if err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	if got != 3 || e.ActiveIndex() != 3 {
		t.Fatalf("settled on %d (active %d), want 3", got, e.ActiveIndex())
	}
	if len(host.replaced) != 1 || host.replaced[0] != "/p3" {
		t.Fatalf("Replace calls = %v, want [/p3]", host.replaced)
	}
	if len(*events) != 2 {
		t.Fatalf("settles = %d, want 2 (write-back must not re-trigger a jump)", len(*events))
	}
}

func TestInvariantHoldsOverRandomOperations(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	n := len(testPages())
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 5000; step++ {
		switch rng.Intn(7) {
		case 0:
			_ = e.BeginGesture()
		case 1:
			_ = e.UpdateGesture(rng.Float64()*float64(n+2) - 1)
		case 2:
			_, _ = e.EndGesture(rng.Float64()*4 - 2)
		case 3:
			_ = e.Tap(rng.Intn(n+2) - 1)
		case 4:
			_ = e.JumpTo(rng.Intn(n), rng.Intn(2) == 0, SourceExternal)
		case 5:
			host.path = testPages()[rng.Intn(n)].Route
			_ = e.RouteChanged(host.path)
		default:
			e.Advance(time.Duration(rng.Intn(120)) * time.Millisecond)
		}

		active, p := e.ActiveIndex(), e.Progress()
		if active < 0 || active >= n {
			t.Fatalf("step %d: ActiveIndex %d out of range", step, active)
		}
		if p < 0 || p > float64(n-1) || math.IsNaN(p) {
			t.Fatalf("step %d: Progress %v out of range", step, p)
		}
		if e.State() == StateIdle && p != float64(active) {
			t.Fatalf("step %d: idle with Progress %v != ActiveIndex %d", step, p, active)
		}
	}
}

func TestBackdropFollowsProgress(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	var colors []string
	e.OnBackdrop(func(c string) { colors = append(colors, c) })

	if e.BackdropColor() != "#000000" {
		t.Fatalf("BackdropColor = %s, want #000000", e.BackdropColor())
	}
	_ = e.BeginGesture()
	_ = e.UpdateGesture(0.5)
	if e.BackdropColor() != "#808080" {
		t.Fatalf("BackdropColor at 0.5 = %s, want #808080", e.BackdropColor())
	}
	_, _ = e.EndGesture(1)
	if e.BackdropColor() != "#ffffff" {
		t.Fatalf("BackdropColor at 1 = %s, want #ffffff", e.BackdropColor())
	}
	if len(colors) != 2 {
		t.Fatalf("backdrop notifications = %d, want 2", len(colors))
	}
}

func TestSetSchemeRepublishesBackdrop(t *testing.T) {
	pages := testPages()
	pages[0].ColorLight = "#eeeeee"
	e, err := New(Options{Pages: pages, InitialPath: "/p0", Scheme: model.SchemeDark})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.SetScheme(model.SchemeLight); err != nil {
		t.Fatalf("SetScheme: %v", err)
	}
	if e.BackdropColor() != "#eeeeee" || e.Scheme() != model.SchemeLight {
		t.Fatalf("BackdropColor = %s scheme = %s, want #eeeeee light", e.BackdropColor(), e.Scheme())
	}
}

func TestAnimatingCoversFollowers(t *testing.T) {
	host := &fakeHost{path: "/p0"}
	e := newTestEngine(t, host)
	e.Indicator().SetPageWidth(10)

	if e.Animating() {
		t.Fatal("Animating at rest = true")
	}
	if err := e.JumpTo(1, false, SourceExternal); err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if !e.Animating() {
		t.Fatal("Animating after page change = false, want bounce and header running")
	}
	for i := 0; i < 500 && e.Animating(); i++ {
		e.Advance(frame)
	}
	if e.Animating() {
		t.Fatal("followers never came to rest")
	}
	if e.Indicator().Scale() != 1 || e.Header().TitleOpacity() != 1 {
		t.Fatalf("scale = %v opacity = %v, want 1 and 1", e.Indicator().Scale(), e.Header().TitleOpacity())
	}
}
