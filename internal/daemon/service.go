// Package daemon runs a headless navigation engine behind an HTTP/SSE API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/pagesync/internal/nav"
	"github.com/theirongolddev/pagesync/internal/router"
	"github.com/theirongolddev/pagesync/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
	FrameRate    int
	// GestureTimeout settles a gesture that has seen no update for this long.
	GestureTimeout time.Duration
	Logger         *slog.Logger
	// Journal receives every settle when set.
	Journal *store.Journal
}

// State is the navigation state as served by the API.
type State struct {
	ActiveIndex int     `json:"active_index"`
	Page        string  `json:"page"`
	Route       string  `json:"route"`
	Progress    float64 `json:"progress"`
	Phase       string  `json:"phase"`
	Backdrop    string  `json:"backdrop"`
	DrawerOpen  bool    `json:"drawer_open"`
}

// Settle describes one settled transition.
type Settle struct {
	TransitionID uint64 `json:"transition_id"`
	Source       string `json:"source"`
	From         int    `json:"from"`
	To           int    `json:"to"`
	Route        string `json:"route"`
	RouteWritten bool   `json:"route_written"`
}

// Event is emitted for every settle, plus a snapshot when a stream opens.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	State     State     `json:"state"`
	Settle    *Settle   `json:"settle,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	Pages           []string  `json:"pages"`
	State           State     `json:"state"`
	SettleCount     int64     `json:"settle_count"`
	RouteWrites     int       `json:"route_writes"`
	JournalSession  string    `json:"journal_session,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service owns one engine and its route host. Both are touched only by the
// goroutine running Loop; HTTP handlers submit commands to it.
type Service struct {
	cfg    Config
	logger *slog.Logger
	engine *nav.Engine
	host   *router.Memory
	frame  time.Duration
	cmds   chan command

	// loop-goroutine only
	routeErr    error
	lastGesture time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	state       State
	settleCount int64
	routeWrites int
	lastError   string
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

type command struct {
	fn    func() error
	reply chan error
}

// New returns a service driving engine, whose route host must be host.
func New(cfg Config, engine *nav.Engine, host *router.Memory) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.FrameRate < 1 {
		cfg.FrameRate = 60
	}
	if cfg.GestureTimeout <= 0 {
		cfg.GestureTimeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Service{
		cfg:       cfg,
		logger:    logger,
		engine:    engine,
		host:      host,
		frame:     time.Second / time.Duration(cfg.FrameRate),
		cmds:      make(chan command),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	host.Subscribe(func(path string) {
		if err := engine.RouteChanged(path); err != nil {
			s.routeErr = err
		}
	})
	engine.OnSettle(s.onSettle)
	s.state = s.currentState()
	return s
}

// Run serves the HTTP API and drives the engine until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go s.Loop(loopCtx)

	s.logger.Info("daemon listening", "addr", s.cfg.Addr, "route", s.host.Path())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// Loop executes commands and advances animations on a frame ticker. It
// returns when ctx is canceled.
func (s *Service) Loop(ctx context.Context) {
	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-s.cmds:
			err := c.fn()
			s.refresh()
			c.reply <- err
		case now := <-ticker.C:
			s.expireGesture(now)
			if s.engine.Animating() {
				s.engine.Advance(now.Sub(last))
				s.refresh()
			}
			last = now
		}
	}
}

// expireGesture settles a gesture whose client stopped sending updates, so a
// lost "end" cannot wedge the engine.
func (s *Service) expireGesture(now time.Time) {
	if s.engine.State() != nav.StateGestureActive || now.Sub(s.lastGesture) < s.cfg.GestureTimeout {
		return
	}
	index, err := s.engine.EndGesture(0)
	if err != nil {
		s.logger.Warn("expiring gesture", "err", err)
		return
	}
	s.logger.Warn("gesture timed out", "idle", now.Sub(s.lastGesture), "settled", index)
	s.refresh()
}

// do runs fn on the loop goroutine and waits for its result.
func (s *Service) do(ctx context.Context, fn func() error) error {
	c := command{fn: fn, reply: make(chan error, 1)}
	select {
	case s.cmds <- c:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Navigate pushes path onto the route host, as a deep link would.
func (s *Service) Navigate(ctx context.Context, path string) error {
	return s.do(ctx, func() error {
		s.routeErr = nil
		s.host.Navigate(path)
		return s.routeErr
	})
}

// Back pops the route history.
func (s *Service) Back(ctx context.Context) (bool, error) {
	var moved bool
	err := s.do(ctx, func() error {
		s.routeErr = nil
		moved = s.host.Back()
		return s.routeErr
	})
	return moved, err
}

// Tap selects a page from the tab bar.
func (s *Service) Tap(ctx context.Context, index int) error {
	return s.do(ctx, func() error { return s.engine.Tap(index) })
}

// TapPage selects a page by name.
func (s *Service) TapPage(ctx context.Context, name string) error {
	return s.do(ctx, func() error {
		i := s.engine.Pages().IndexOf(name)
		if i < 0 {
			return fmt.Errorf("%w: no page named %q", nav.ErrInvalidIndex, name)
		}
		return s.engine.Tap(i)
	})
}

// Gesture applies one gesture step and returns the settled index for "end".
func (s *Service) Gesture(ctx context.Context, g GestureRequest) (int, error) {
	settled := -1
	err := s.do(ctx, func() error {
		s.lastGesture = time.Now()
		switch g.Action {
		case "begin":
			return s.engine.BeginGesture()
		case "update":
			return s.engine.UpdateGesture(g.Position)
		case "end":
			i, err := s.engine.EndGesture(g.Velocity)
			settled = i
			return err
		}
		return fmt.Errorf("%w: %q", errUnknownAction, g.Action)
	})
	return settled, err
}

// ToggleDrawer opens or closes the host's navigation drawer.
func (s *Service) ToggleDrawer(ctx context.Context) error {
	return s.do(ctx, func() error {
		s.host.ToggleDrawer()
		return nil
	})
}

func (s *Service) onSettle(ev nav.SettleEvent) {
	st := s.currentState()
	settle := &Settle{
		TransitionID: ev.Transition.ID,
		Source:       ev.Transition.Source.String(),
		From:         ev.Previous,
		To:           ev.Index,
		Route:        ev.Route,
		RouteWritten: ev.RouteWritten,
	}

	var journalErr error
	if s.cfg.Journal != nil {
		journalErr = s.cfg.Journal.Record(ev)
		if journalErr != nil {
			s.logger.Warn("journal write failed", "err", journalErr)
		}
	}

	s.mu.Lock()
	s.settleCount++
	if journalErr != nil {
		s.lastError = journalErr.Error()
	}
	s.nextEventID++
	e := Event{
		ID:        s.nextEventID,
		Type:      "settle",
		Timestamp: time.Now(),
		State:     st,
		Settle:    settle,
	}
	s.mu.Unlock()

	s.logger.Info("settled",
		"source", settle.Source,
		"from", settle.From,
		"to", settle.To,
		"route", settle.Route,
		"route_written", settle.RouteWritten,
	)
	s.publishEvent(e)
}

func (s *Service) currentState() State {
	snap := s.engine.Snapshot()
	return State{
		ActiveIndex: snap.ActiveIndex,
		Page:        s.engine.ActivePage().Name,
		Route:       s.host.Path(),
		Progress:    snap.Progress,
		Phase:       snap.State,
		Backdrop:    s.engine.BackdropColor(),
		DrawerOpen:  s.host.DrawerOpen(),
	}
}

func (s *Service) refresh() {
	st := s.currentState()
	writes := s.engine.RouteWrites()
	s.mu.Lock()
	s.state = st
	s.routeWrites = writes
	s.mu.Unlock()
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	pages := make([]string, 0, len(s.engine.Pages()))
	for _, p := range s.engine.Pages() {
		pages = append(pages, p.Name)
	}
	journal := ""
	if s.cfg.Journal != nil {
		journal = s.cfg.Journal.Session()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		Pages:           pages,
		State:           s.state,
		SettleCount:     s.settleCount,
		RouteWrites:     s.routeWrites,
		JournalSession:  journal,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
