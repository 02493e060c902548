package router

import (
	"testing"
	"time"

	"github.com/theirongolddev/pagesync/internal/model"
	"github.com/theirongolddev/pagesync/internal/nav"
)

func TestNavigateAndBack(t *testing.T) {
	m := NewMemory("", 0)
	if m.Path() != "/" {
		t.Fatalf("Path = %q, want /", m.Path())
	}
	var seen []string
	m.Subscribe(func(p string) { seen = append(seen, p) })

	m.Navigate("/a")
	m.Navigate("/a")
	m.Navigate("/b")
	if !m.Back() {
		t.Fatal("Back returned false with history")
	}
	if m.Path() != "/a" {
		t.Fatalf("Path after Back = %q, want /a", m.Path())
	}
	m.Back()
	if m.Back() {
		t.Fatal("Back returned true on empty history")
	}

	want := []string{"/a", "/b", "/a", "/"}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notifications = %v, want %v", seen, want)
		}
	}
}

func TestReplaceDoesNotPushHistory(t *testing.T) {
	m := NewMemory("/a", 0)
	m.Replace("/b")
	if len(m.History()) != 0 {
		t.Fatalf("History = %v, want empty", m.History())
	}
	if m.Path() != "/b" {
		t.Fatalf("Path = %q, want /b", m.Path())
	}
}

func TestHistoryIsBounded(t *testing.T) {
	m := NewMemory("/0", 3)
	for _, p := range []string{"/1", "/2", "/3", "/4", "/5"} {
		m.Navigate(p)
	}
	h := m.History()
	if len(h) != 3 || h[0] != "/2" || h[2] != "/4" {
		t.Fatalf("History = %v, want [/2 /3 /4]", h)
	}
}

func TestDrawerToggle(t *testing.T) {
	m := NewMemory("/", 0)
	m.ToggleDrawer()
	if !m.DrawerOpen() {
		t.Fatal("drawer closed after toggle")
	}
	m.CloseDrawer()
	if m.DrawerOpen() {
		t.Fatal("drawer open after close")
	}
}

func TestMemoryDrivesEngineWithoutFeedback(t *testing.T) {
	pages := model.Pages{
		{Name: "balance", Route: "/balance", ColorLight: "#ffffff", ColorDark: "#000000"},
		{Name: "wallet", Route: "/", ColorLight: "#ffffff", ColorDark: "#000000"},
		{Name: "budget", Route: "/budget", ColorLight: "#ffffff", ColorDark: "#000000"},
	}
	m := NewMemory("/", 0)
	e, err := nav.New(nav.Options{Pages: pages, Host: m, TapDuration: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("nav.New: %v", err)
	}
	var routeErrs int
	m.Subscribe(func(p string) {
		if err := e.RouteChanged(p); err != nil {
			routeErrs++
		}
	})
	var settles int
	e.OnSettle(func(nav.SettleEvent) { settles++ })

	if e.ActiveIndex() != 1 {
		t.Fatalf("initial ActiveIndex = %d, want 1", e.ActiveIndex())
	}

	m.Navigate("/budget")
	if e.ActiveIndex() != 2 || e.RouteWrites() != 0 {
		t.Fatalf("after Navigate: active=%d writes=%d", e.ActiveIndex(), e.RouteWrites())
	}

	if err := e.Tap(0); err != nil {
		t.Fatalf("Tap: %v", err)
	}
	for i := 0; i < 100 && e.State() != nav.StateIdle; i++ {
		e.Advance(16 * time.Millisecond)
	}
	if m.Path() != "/balance" || e.RouteWrites() != 1 {
		t.Fatalf("after tap: path=%q writes=%d", m.Path(), e.RouteWrites())
	}

	if !m.Back() {
		t.Fatal("Back returned false")
	}
	if m.Path() != "/" || e.ActiveIndex() != 1 {
		t.Fatalf("after Back: path=%q active=%d, want / and 1", m.Path(), e.ActiveIndex())
	}
	if settles != 3 || routeErrs != 0 {
		t.Fatalf("settles=%d routeErrs=%d, want 3 and 0", settles, routeErrs)
	}
}
