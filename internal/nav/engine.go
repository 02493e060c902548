// Package nav implements the paged-navigation synchronization engine: a
// swipeable surface, its continuous progress, the settled page index, the
// route string held by a routing host, and the visual followers derived from
// them. The engine is single-threaded; hosts serialize every call.
package nav

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/theirongolddev/pagesync/internal/model"
)

// Haptics receives a fire-and-forget call on discrete tab selection.
type Haptics interface {
	Selection()
}

// Options configures an Engine.
type Options struct {
	Pages model.Pages
	// Host supplies the initial route and receives write-backs. Optional.
	Host RouteHost
	// InitialPath is used when Host is nil.
	InitialPath string
	Haptics     Haptics
	Logger      *slog.Logger
	Scheme      model.ColorScheme
	// DefaultPage is the fallback index for unknown or root paths.
	DefaultPage int
	TapDuration time.Duration
	Bounce      Bounce
	FrameRate   int
}

// Engine is the coordinator that owns every navigation component. Hosts hold
// one Engine and inject it where it is needed; there is no global state.
type Engine struct {
	pages  model.Pages
	scheme model.ColorScheme

	progress  *ProgressTracker
	index     *IndexStore
	surface   *Surface
	routes    *Reconciler
	indicator *IndicatorFollower
	header    *HeaderTransition

	backdrop      *Backdrop
	backdropColor *Value[string]

	haptics  Haptics
	logger   *slog.Logger
	nextSub  int
	settlers []settleSubscriber
}

type settleSubscriber struct {
	id int
	fn func(SettleEvent)
}

// New builds an engine resting on the page the initial route resolves to.
// No route is written during construction.
func New(opts Options) (*Engine, error) {
	if err := opts.Pages.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pages: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Scheme == "" {
		opts.Scheme = model.SchemeDark
	}
	if opts.Bounce == (Bounce{}) {
		opts.Bounce = DefaultBounce()
	}

	n := len(opts.Pages)
	table, err := NewRouteTable(opts.Pages, opts.DefaultPage)
	if err != nil {
		return nil, err
	}

	path := opts.InitialPath
	if opts.Host != nil {
		path = opts.Host.Path()
	}
	initial, err := table.Resolve(path)
	if errors.Is(err, ErrUnroutablePath) {
		logger.Info("initial path matches no page", "path", path, "index", initial)
	}

	backdrop, err := NewBackdrop(opts.Pages.Colors(opts.Scheme))
	if err != nil {
		return nil, err
	}

	e := &Engine{
		pages:    opts.Pages,
		scheme:   opts.Scheme,
		backdrop: backdrop,
		haptics:  opts.Haptics,
		logger:   logger,
	}
	e.progress = NewProgressTracker(n, float64(initial))
	e.index, err = NewIndexStore(n, initial)
	if err != nil {
		return nil, err
	}
	e.surface = NewSurface(e.progress, n, initial, opts.TapDuration, logger)
	e.surface.OnSettle(e.handleSettle)
	e.routes = NewReconciler(table, e.surface, e.index, opts.Host, logger)
	e.indicator = NewIndicatorFollower(e.progress, e.index, opts.Bounce, opts.FrameRate)
	e.header = NewHeaderTransition(opts.FrameRate)

	e.backdropColor = NewValue(backdrop.Hex(e.progress.Value()))
	e.progress.Subscribe(func(p float64) {
		e.backdropColor.Set(e.backdrop.Hex(p))
	})

	logger.Debug("engine ready", "pages", n, "initial", initial, "path", path)
	return e, nil
}

// handleSettle is the only place the index is committed. The order is fixed:
// commit, route write-back, then followers and subscribers.
func (e *Engine) handleSettle(ev SettleEvent) {
	if err := e.index.Commit(ev.Index); err != nil {
		e.logger.Error("settle on invalid index", "index", ev.Index, "err", err)
		return
	}
	ev.Route, _ = e.routes.Table().PathFor(ev.Index)
	wrote, err := e.routes.Settled(ev)
	if err != nil {
		e.logger.Warn("route write-back failed", "index", ev.Index, "err", err)
	}
	ev.RouteWritten = wrote

	e.logger.Debug("settled",
		"id", ev.Transition.ID,
		"source", ev.Transition.Source.String(),
		"from", ev.Previous,
		"to", ev.Index,
		"route_written", wrote,
	)

	e.indicator.Settled(ev)
	e.header.Settled(ev)
	subs := append([]settleSubscriber(nil), e.settlers...)
	for _, s := range subs {
		s.fn(ev)
	}
}

// BeginGesture starts a drag.
func (e *Engine) BeginGesture() error { return e.surface.BeginGesture() }

// UpdateGesture reports the drag position in page units.
func (e *Engine) UpdateGesture(p float64) error { return e.surface.UpdateGesture(p) }

// EndGesture releases the drag; velocity's sign is the direction of travel.
func (e *Engine) EndGesture(velocity float64) (int, error) {
	return e.surface.SettleGesture(velocity)
}

// Tap selects a page from the tab bar with an animated move. Selecting the
// page already shown does nothing.
func (e *Engine) Tap(index int) error {
	if index < 0 || index >= len(e.pages) {
		return fmt.Errorf("%w: tap %d not in [0, %d]", ErrInvalidIndex, index, len(e.pages)-1)
	}
	if index == e.index.Active() && e.surface.State() == StateIdle {
		return nil
	}
	if err := e.surface.JumpTo(index, true, SourceTap); err != nil {
		return err
	}
	if e.haptics != nil {
		e.haptics.Selection()
	}
	return nil
}

// JumpTo is the programmatic move primitive.
func (e *Engine) JumpTo(index int, animate bool, source Source) error {
	return e.surface.JumpTo(index, animate, source)
}

// RouteChanged is called by the host whenever its route changes.
// Unknown paths fall back to the default page and are not an error.
func (e *Engine) RouteChanged(path string) error {
	return e.routes.RouteChanged(path)
}

// Advance moves every running animation forward by one frame of length dt.
func (e *Engine) Advance(dt time.Duration) {
	e.surface.Advance(dt)
	e.indicator.Advance(dt)
	e.header.Advance(dt)
}

// Animating reports whether any frame-driven output still needs frames.
func (e *Engine) Animating() bool {
	return e.surface.State() == StateProgrammaticAnimating ||
		e.indicator.Animating() ||
		e.header.Animating()
}

// SetScheme switches light/dark reference colors and republishes the backdrop.
func (e *Engine) SetScheme(scheme model.ColorScheme) error {
	backdrop, err := NewBackdrop(e.pages.Colors(scheme))
	if err != nil {
		return err
	}
	e.scheme = scheme
	e.backdrop = backdrop
	e.backdropColor.Set(backdrop.Hex(e.progress.Value()))
	return nil
}

// SetTapDuration changes the animated tap duration.
func (e *Engine) SetTapDuration(d time.Duration) { e.surface.SetDuration(d) }

// OnSettle subscribes to settle events, delivered after commit and write-back.
func (e *Engine) OnSettle(fn func(SettleEvent)) func() {
	e.nextSub++
	id := e.nextSub
	e.settlers = append(e.settlers, settleSubscriber{id: id, fn: fn})
	return func() {
		for i, s := range e.settlers {
			if s.id == id {
				e.settlers = append(e.settlers[:i], e.settlers[i+1:]...)
				return
			}
		}
	}
}

// OnProgress subscribes to progress changes.
func (e *Engine) OnProgress(fn func(float64)) func() { return e.progress.Subscribe(fn) }

// OnIndex subscribes to committed index changes.
func (e *Engine) OnIndex(fn func(int)) func() { return e.index.Subscribe(fn) }

// OnBackdrop subscribes to backdrop color changes.
func (e *Engine) OnBackdrop(fn func(string)) func() { return e.backdropColor.Subscribe(fn) }

// State returns the engine state.
func (e *Engine) State() State { return e.surface.State() }

// ActiveIndex returns the settled page index.
func (e *Engine) ActiveIndex() int { return e.index.Active() }

// Progress returns the continuous position.
func (e *Engine) Progress() float64 { return e.progress.Value() }

// Snapshot returns the observable navigation state.
func (e *Engine) Snapshot() NavigationState {
	return NavigationState{
		ActiveIndex: e.index.Active(),
		Progress:    e.progress.Value(),
		State:       e.surface.State().String(),
	}
}

// Pages returns the ordered pages.
func (e *Engine) Pages() model.Pages { return e.pages }

// ActivePage returns the settled page.
func (e *Engine) ActivePage() model.Page { return e.pages[e.index.Active()] }

// BackdropColor returns the current #rrggbb backdrop.
func (e *Engine) BackdropColor() string { return e.backdropColor.Get() }

// Scheme returns the active color scheme.
func (e *Engine) Scheme() model.ColorScheme { return e.scheme }

// Indicator returns the tab-bar indicator follower.
func (e *Engine) Indicator() *IndicatorFollower { return e.indicator }

// Header returns the header micro-interaction.
func (e *Engine) Header() *HeaderTransition { return e.header }

// Routes returns the route table.
func (e *Engine) Routes() RouteTable { return e.routes.Table() }

// RouteWrites returns how many route writes the engine has issued.
func (e *Engine) RouteWrites() int { return e.routes.Writes() }
