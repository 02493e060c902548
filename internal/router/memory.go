// Package router provides an in-memory routing host: the single source of
// truth for the current route string, with history and a navigation drawer.
package router

// DefaultHistoryLimit bounds the back stack when no limit is given.
const DefaultHistoryLimit = 50

// Memory is an in-memory route host. It is not safe for concurrent use;
// callers serialize access the same way they serialize the engine.
type Memory struct {
	path    string
	history []string
	limit   int
	drawer  bool

	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(string)
}

// NewMemory returns a host starting at initial ("/" when empty).
func NewMemory(initial string, limit int) *Memory {
	if initial == "" {
		initial = "/"
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Memory{path: initial, limit: limit}
}

// Path returns the current route.
func (m *Memory) Path() string { return m.path }

// Replace swaps the current route without adding a history entry. This is
// how settled in-engine transitions are written back.
func (m *Memory) Replace(path string) {
	m.set(path)
}

// Navigate pushes the current route onto the history and moves to path.
// Navigating to the current route does nothing.
func (m *Memory) Navigate(path string) {
	if path == m.path {
		return
	}
	m.history = append(m.history, m.path)
	if len(m.history) > m.limit {
		m.history = m.history[len(m.history)-m.limit:]
	}
	m.set(path)
}

// Back pops the history. It reports false when there is nowhere to go.
func (m *Memory) Back() bool {
	if len(m.history) == 0 {
		return false
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	m.set(prev)
	return true
}

// History returns a copy of the back stack, oldest first.
func (m *Memory) History() []string {
	return append([]string(nil), m.history...)
}

// ToggleDrawer opens or closes the navigation drawer.
func (m *Memory) ToggleDrawer() { m.drawer = !m.drawer }

// CloseDrawer closes the drawer if it is open.
func (m *Memory) CloseDrawer() { m.drawer = false }

// DrawerOpen reports whether the drawer is showing.
func (m *Memory) DrawerOpen() bool { return m.drawer }

// Subscribe registers fn for route changes. Notifications are synchronous
// and fire only when the route actually changes.
func (m *Memory) Subscribe(fn func(string)) (unsubscribe func()) {
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Memory) set(path string) {
	if path == "" {
		path = "/"
	}
	if path == m.path {
		return
	}
	m.path = path
	subs := append([]subscriber(nil), m.subs...)
	for _, s := range subs {
		s.fn(path)
	}
}
