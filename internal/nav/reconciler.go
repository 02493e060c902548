package nav

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/theirongolddev/pagesync/internal/model"
)

// RouteHost is the routing host as seen by the engine. It owns the route
// string; the engine reads it and may request a replacement.
type RouteHost interface {
	Path() string
	Replace(path string)
}

// RouteTable maps route strings to page indices and back.
type RouteTable struct {
	routes       []string
	defaultIndex int
}

// NewRouteTable builds a table from the ordered pages. defaultIndex is the
// fallback for unknown paths.
func NewRouteTable(pages model.Pages, defaultIndex int) (RouteTable, error) {
	if defaultIndex < 0 || defaultIndex >= len(pages) {
		return RouteTable{}, fmt.Errorf("%w: default page %d", ErrInvalidIndex, defaultIndex)
	}
	routes := make([]string, len(pages))
	for i, p := range pages {
		routes[i] = NormalizePath(p.Route)
	}
	return RouteTable{routes: routes, defaultIndex: defaultIndex}, nil
}

// Resolve returns the page index for path. Unknown paths return the default
// index together with ErrUnroutablePath; callers treat that as a fallback,
// never as a failure.
func (t RouteTable) Resolve(path string) (int, error) {
	p := NormalizePath(path)
	for i, r := range t.routes {
		if r == p {
			return i, nil
		}
	}
	if p == "/" {
		return t.defaultIndex, nil
	}
	return t.defaultIndex, fmt.Errorf("%w: %q", ErrUnroutablePath, path)
}

// PathFor returns the route of page index.
func (t RouteTable) PathFor(index int) (string, error) {
	if index < 0 || index >= len(t.routes) {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return t.routes[index], nil
}

// Default returns the fallback index.
func (t RouteTable) Default() int { return t.defaultIndex }

// NormalizePath strips query and fragment, collapses a trailing slash, and
// maps the empty path to the root.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

type jumper interface {
	JumpTo(index int, animate bool, source Source) error
}

type committer interface {
	Commit(index int) error
	Active() int
}

// Reconciler keeps the route string and the pager in agreement without
// letting either side re-trigger the other.
type Reconciler struct {
	table   RouteTable
	surface jumper
	index   committer
	host    RouteHost
	logger  *slog.Logger
	writes  int
}

// NewReconciler wires a reconciler. host may be nil, in which case settles
// are never written back.
func NewReconciler(table RouteTable, surface jumper, index committer, host RouteHost, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		table:   table,
		surface: surface,
		index:   index,
		host:    host,
		logger:  logger,
	}
}

// RouteChanged handles a route change made by the host. It moves the pager
// without animation and never writes the route.
func (r *Reconciler) RouteChanged(path string) error {
	target, err := r.table.Resolve(path)
	if errors.Is(err, ErrUnroutablePath) {
		r.logger.Info("unroutable path, using default page", "path", path, "index", target)
	}
	if target == r.index.Active() {
		return nil
	}
	if err := r.surface.JumpTo(target, false, SourceExternal); err != nil {
		if errors.Is(err, ErrTransitionConflict) {
			r.logger.Debug("route change dropped during transition", "path", path, "target", target)
		}
		return err
	}
	// Already committed by the settle of the jump; kept for jumpers that do not settle synchronously.
	return r.index.Commit(target)
}

// Settled writes the active page's route back to the host for transitions
// that originated inside the engine. External settles are never echoed.
func (r *Reconciler) Settled(ev SettleEvent) (wrote bool, err error) {
	if !ev.Transition.Source.WritesRoute() || r.host == nil {
		return false, nil
	}
	active := r.index.Active()
	if current, err := r.table.Resolve(r.host.Path()); err == nil && current == active {
		return false, nil
	}
	path, err := r.table.PathFor(active)
	if err != nil {
		return false, err
	}
	r.writes++
	r.logger.Debug("route write-back", "path", path, "source", ev.Transition.Source.String())
	r.host.Replace(path)
	return true, nil
}

// Writes returns how many route writes this reconciler has issued.
func (r *Reconciler) Writes() int { return r.writes }

// Table returns the route table.
func (r *Reconciler) Table() RouteTable { return r.table }
