// Package tui provides the interactive Bubble Tea pager for pagesync.
package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/logging"
	"github.com/theirongolddev/pagesync/internal/nav"
	"github.com/theirongolddev/pagesync/internal/router"
	"github.com/theirongolddev/pagesync/internal/store"
	"github.com/theirongolddev/pagesync/internal/tui/components"
	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

// RouteMsg asks the pager to follow an external route change, as a deep
// link or another process would. Send it with tea.Program.Send.
type RouteMsg struct {
	Path string
}

type frameMsg time.Time

// Options configures NewApp.
type Options struct {
	Config config.Config
	// ConfigPath is where the setup form and the scheme toggle persist
	// settings. Empty disables saving.
	ConfigPath string
	Logger     *slog.Logger
	// Bell receives a BEL byte on tab selection when haptics are enabled.
	Bell io.Writer
	// NeedSetup shows the setup form before the pager.
	NeedSetup bool
	// Journal records every settle when set.
	Journal *store.Journal
}

// App is the root Bubble Tea model.
type App struct {
	cfg        config.Config
	configPath string
	logger     *slog.Logger

	engine *nav.Engine
	host   *router.Memory
	bell   *bellHaptics
	stats  *pageStats

	keys   KeyMap
	help   help.Model
	prompt textinput.Model

	// UI state
	width        int
	height       int
	showHelp     bool
	prompting    bool
	drawerCursor int
	notice       string

	// Frame loop
	ticking   bool
	lastFrame time.Time
	frame     time.Duration

	drag dragState
	now  func() time.Time

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
}

type dragState struct {
	pending  bool // button down, no movement yet
	active   bool
	startX   int
	startPos float64
	lastX    int
	lastAt   time.Time
	velocity float64 // pages per second, positive toward higher indices
}

// pageStats is written by settle subscribers, so it lives behind a pointer
// shared by every copy of App.
type pageStats struct {
	visits  []int
	last    nav.SettleEvent
	settles int
}

type bellHaptics struct {
	w       io.Writer
	enabled bool
	rings   int
}

func (b *bellHaptics) Selection() {
	if !b.enabled {
		return
	}
	b.rings++
	if b.w != nil {
		_, _ = io.WriteString(b.w, "\a")
	}
}

const (
	minTerminalWidth  = 40
	minTerminalHeight = 10
	minContentHeight  = 3
	trackWidth        = 28
)

// NewApp builds the engine, its in-memory route host, and the pager model.
func NewApp(opts Options) (App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	theme.SetActive(cfg.Appearance.Theme)

	host := router.NewMemory(cfg.General.StartRoute, router.DefaultHistoryLimit)
	bell := &bellHaptics{w: opts.Bell, enabled: cfg.General.Haptics}
	engine, err := nav.New(nav.Options{
		Pages:       cfg.Pages,
		Host:        host,
		Haptics:     bell,
		Logger:      logger,
		Scheme:      cfg.Scheme(),
		DefaultPage: cfg.General.DefaultPage,
		TapDuration: cfg.TapDuration(),
		Bounce:      cfg.Bounce(),
		FrameRate:   cfg.Animation.FrameRate,
	})
	if err != nil {
		return App{}, fmt.Errorf("creating engine: %w", err)
	}

	host.Subscribe(func(path string) {
		if err := engine.RouteChanged(path); err != nil {
			logger.Debug("route change not applied", "path", path, "err", err)
		}
	})

	stats := &pageStats{visits: make([]int, len(cfg.Pages))}
	stats.visits[engine.ActiveIndex()]++
	engine.OnSettle(func(ev nav.SettleEvent) {
		stats.settles++
		stats.last = ev
		if ev.Changed() {
			stats.visits[ev.Index]++
		}
	})
	if j := opts.Journal; j != nil {
		engine.OnSettle(func(ev nav.SettleEvent) {
			if err := j.Record(ev); err != nil {
				logger.Warn("journal write failed", "err", err)
			}
		})
	}

	prompt := textinput.New()
	prompt.Prompt = "route › "
	prompt.Placeholder = "/statistics"
	prompt.CharLimit = 256

	fps := max(cfg.Animation.FrameRate, 1)
	a := App{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		logger:     logger,
		engine:     engine,
		host:       host,
		bell:       bell,
		stats:      stats,
		keys:       DefaultKeyMap,
		help:       help.New(),
		prompt:     prompt,
		frame:      time.Second / time.Duration(fps),
		now:        time.Now,
		needSetup:  opts.NeedSetup,
	}
	if a.needSetup {
		vals := setupValuesFrom(cfg)
		a.setupVals = &vals
		a.setupForm = newSetupForm(cfg.Pages, a.setupVals)
	}
	return a, nil
}

// Engine returns the navigation engine driven by the app.
func (a App) Engine() *nav.Engine { return a.engine }

// Host returns the app's route host.
func (a App) Host() *router.Memory { return a.host }

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnableMouseCellMotion}
	if a.needSetup && a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	if next.modalOpen() {
		next.abandonDrag()
	}
	frame := next.scheduleFrame()
	return next, tea.Batch(cmd, frame)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.prompt.Width = max(msg.Width-12, 10)
		if n := len(a.engine.Pages()); n > 0 {
			a.engine.Indicator().SetPageWidth(float64(msg.Width) / float64(n))
		}
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case frameMsg:
		a = a.advance(time.Time(msg))
		if a.engine.Animating() {
			return a, frameCmd(a.frame)
		}
		a.ticking = false
		return a, nil

	case RouteMsg:
		a.host.Navigate(msg.Path)
		return a, nil

	case tea.MouseMsg:
		if a.drag.active || a.drag.pending {
			return a.updateMouse(msg), nil
		}
		if a.modalOpen() {
			return a, nil
		}
		return a.updateMouse(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.prompting {
			return a.updatePrompt(msg)
		}
		if a.host.DrawerOpen() {
			return a.updateDrawer(msg), nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		return a.updateKeys(msg)
	}

	// Forward unhandled messages to the setup form and prompt (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.prompting {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (App, tea.Cmd) {
	a.notice = ""
	active := a.engine.ActiveIndex()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.Prev):
		if active > 0 {
			a.tap(active - 1)
		}
	case key.Matches(msg, a.keys.Next):
		if active < len(a.engine.Pages())-1 {
			a.tap(active + 1)
		}
	case key.Matches(msg, a.keys.Page):
		if r := msg.Runes; len(r) == 1 {
			if i := int(r[0] - '1'); i < len(a.engine.Pages()) {
				a.tap(i)
			}
		}
	case key.Matches(msg, a.keys.Route):
		a.prompting = true
		a.prompt.SetValue("")
		return a, a.prompt.Focus()
	case key.Matches(msg, a.keys.Drawer):
		a.drawerCursor = active
		a.host.ToggleDrawer()
	case key.Matches(msg, a.keys.Back):
		if !a.host.Back() {
			a.notice = "no history"
		}
	case key.Matches(msg, a.keys.Scheme):
		a.toggleScheme()
	}
	return a, nil
}

// tap selects a page. Conflicts with a running transition are dropped; the
// engine has already logged them.
func (a *App) tap(index int) {
	if err := a.engine.Tap(index); err != nil && !errors.Is(err, nav.ErrTransitionConflict) {
		a.logger.Warn("tap failed", "index", index, "err", err)
	}
}

func (a *App) toggleScheme() {
	scheme := a.engine.Scheme().Toggle()
	if err := a.engine.SetScheme(scheme); err != nil {
		a.logger.Warn("switching color scheme", "scheme", scheme, "err", err)
		return
	}
	a.cfg.General.ColorScheme = string(scheme)
	if a.configPath == "" {
		return
	}
	if err := config.SaveFile(a.configPath, a.cfg); err != nil {
		a.logger.Warn("saving config", "path", a.configPath, "err", err)
		a.notice = "could not save config"
	}
}

func (a App) updatePrompt(msg tea.KeyMsg) (App, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		path := strings.TrimSpace(a.prompt.Value())
		a.prompting = false
		a.prompt.Blur()
		if path != "" {
			a.host.Navigate(path)
		}
		return a, nil
	case key.Matches(msg, a.keys.Cancel):
		a.prompting = false
		a.prompt.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

func (a App) updateDrawer(msg tea.KeyMsg) App {
	pages := a.engine.Pages()
	switch {
	case key.Matches(msg, a.keys.DrawerUp):
		if a.drawerCursor > 0 {
			a.drawerCursor--
		}
	case key.Matches(msg, a.keys.DrawerDn):
		if a.drawerCursor < len(pages)-1 {
			a.drawerCursor++
		}
	case key.Matches(msg, a.keys.Confirm):
		a.host.CloseDrawer()
		a.host.Navigate(pages[a.drawerCursor].Route)
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Drawer):
		a.host.CloseDrawer()
	case key.Matches(msg, a.keys.Quit):
		a.host.CloseDrawer()
	}
	return a
}

func (a App) updateMouse(msg tea.MouseMsg) App {
	pageW := a.pageWidth()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return a
		}
		if msg.Y < components.TabBarHeight {
			if i := components.TabAtX(a.engine.Pages(), a.width, msg.X); i >= 0 {
				a.tap(i)
			}
			return a
		}
		if msg.Y >= components.TabBarHeight+a.contentHeight() {
			return a
		}
		a.drag = dragState{pending: true, startX: msg.X, lastX: msg.X, lastAt: a.now()}

	case tea.MouseActionMotion:
		if !a.drag.pending && !a.drag.active {
			return a
		}
		if a.drag.pending {
			if msg.X == a.drag.startX {
				return a
			}
			if err := a.engine.BeginGesture(); err != nil {
				a.drag = dragState{}
				return a
			}
			a.drag.pending = false
			a.drag.active = true
			a.drag.startPos = a.engine.Progress()
		}
		now := a.now()
		if dt := now.Sub(a.drag.lastAt).Seconds(); dt > 0 && pageW > 0 {
			a.drag.velocity = -float64(msg.X-a.drag.lastX) / pageW / dt
		}
		a.drag.lastX = msg.X
		a.drag.lastAt = now
		if pageW > 0 {
			pos := a.drag.startPos - float64(msg.X-a.drag.startX)/pageW
			_ = a.engine.UpdateGesture(pos)
		}

	case tea.MouseActionRelease:
		if a.drag.active {
			if _, err := a.engine.EndGesture(a.drag.velocity); err != nil {
				a.logger.Debug("gesture end", "err", err)
			}
		}
		a.drag = dragState{}
	}
	return a
}

// modalOpen reports whether a view that swallows mouse input is showing.
func (a App) modalOpen() bool {
	return a.needSetup || a.showHelp || a.prompting || a.host.DrawerOpen()
}

// abandonDrag settles a gesture whose release will never be seen. The engine
// must not be left in the middle of a gesture.
func (a *App) abandonDrag() {
	if a.drag.active {
		if _, err := a.engine.EndGesture(a.drag.velocity); err != nil {
			a.logger.Debug("gesture end", "err", err)
		}
	}
	a.drag = dragState{}
}

func (a App) updateSetupForm(msg tea.Msg) (App, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.applySetup(); err != nil {
			a.logger.Warn("applying setup", "err", err)
			a.notice = "setup not saved: " + err.Error()
		}
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a *App) applySetup() error {
	if err := a.setupVals.apply(&a.cfg); err != nil {
		return err
	}
	theme.SetActive(a.cfg.Appearance.Theme)
	a.bell.enabled = a.cfg.General.Haptics
	a.engine.SetTapDuration(a.cfg.TapDuration())
	if err := a.engine.SetScheme(a.cfg.Scheme()); err != nil {
		return err
	}
	if a.configPath == "" {
		return nil
	}
	return config.SaveFile(a.configPath, a.cfg)
}

// scheduleFrame starts the frame loop when an animation is running and no
// tick is outstanding.
func (a *App) scheduleFrame() tea.Cmd {
	if a.ticking || !a.engine.Animating() {
		return nil
	}
	a.ticking = true
	a.lastFrame = time.Time{}
	return frameCmd(a.frame)
}

func (a App) advance(at time.Time) App {
	dt := a.frame
	if !a.lastFrame.IsZero() {
		dt = at.Sub(a.lastFrame)
	}
	a.lastFrame = at
	a.engine.Advance(dt)
	return a
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (a App) pageWidth() float64 {
	return a.engine.Indicator().PageWidth()
}

func (a App) contentHeight() int {
	h := a.height - components.TabBarHeight - 1
	if a.prompting {
		h--
	}
	return max(h, minContentHeight)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.width < minTerminalWidth || a.height < minTerminalHeight {
		return a.viewTooSmall()
	}
	return a.viewMain()
}

func (a App) viewTooSmall() string {
	h := max(a.height, 1)
	msg := fmt.Sprintf(
		"\n  Terminal too small (%dx%d)\n\n  pagesync needs at least %dx%d.\n",
		a.width, a.height, minTerminalWidth, minTerminalHeight,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	bg := lipgloss.Color(a.engine.BackdropColor())
	ind := a.engine.Indicator()

	header := components.RenderTabBar(a.engine.Pages(), a.engine.ActiveIndex(),
		components.Indicator{Offset: ind.Offset(), Scale: ind.Scale()}, w, bg)

	contentH := a.contentHeight()
	var content string
	if a.showHelp {
		content = a.renderHelp(w, contentH)
	} else {
		content = a.renderPager(w, contentH, bg)
	}
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, w, bg)
	if a.host.DrawerOpen() {
		content = spliceOverlay(content, a.drawerLines(contentH), 1, 0)
	}

	parts := []string{header, content}
	if a.prompting {
		promptStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)
		parts = append(parts, promptStyle.Render(a.prompt.View()))
	}
	parts = append(parts, a.renderStatusBar(w))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderStatusBar(w int) string {
	t := theme.Active
	routeStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := " " + routeStyle.Render(a.host.Path()) + dimStyle.Render("  "+a.engine.State().String())
	if a.notice != "" {
		left += dimStyle.Render("  ") + warnStyle.Render(a.notice)
	} else if w >= 100 {
		left += dimStyle.Render("  ") + a.help.ShortHelpView(a.keys.ShortHelp())
	}

	track := components.PageTrack(a.engine.Progress(), len(a.engine.Pages()), trackWidth)
	return components.RenderStatusBar(w, left, track+dimStyle.Render(" "))
}

// renderPager draws the page under the current progress; between two pages
// it slides them by the fractional part.
func (a App) renderPager(w, h int, bg lipgloss.Color) string {
	n := len(a.engine.Pages())
	p := a.engine.Progress()
	left := int(math.Floor(p))
	left = max(0, min(left, n-1))
	frac := p - float64(left)

	cur := a.renderPage(left, w, h, bg)
	if frac <= 0 || left+1 >= n {
		return cur
	}
	next := a.renderPage(left+1, w, h, bg)
	return slide(cur, next, int(math.Round(frac*float64(w))), w)
}

func (a App) renderPage(i, w, h int, bg lipgloss.Color) string {
	t := theme.Active
	page := a.engine.Pages()[i]
	fg := t.TextOn(string(bg))

	titleOpacity, actionOpacity, offset := 1.0, 1.0, 0
	if i == a.engine.ActiveIndex() {
		hdr := a.engine.Header()
		titleOpacity = hdr.TitleOpacity()
		actionOpacity = hdr.ActionOpacity()
		offset = int(math.Round(hdr.TitleOffset() / 5))
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(theme.Fade(fg, bg, titleOpacity)).
		Background(bg).
		Bold(true)
	routeStyle := lipgloss.NewStyle().
		Foreground(theme.Fade(t.Accent, bg, actionOpacity)).
		Background(bg)

	title := page.Title
	if page.Icon != "" {
		title = page.Icon + "  " + title
	}

	cardW := min(w-4, 72)
	last := "-"
	if a.stats.settles > 0 {
		ev := a.stats.last
		last = fmt.Sprintf("%s %d→%d", ev.Transition.Source, ev.Previous, ev.Index)
	}
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Page", Value: fmt.Sprintf("%d of %d", i+1, len(a.engine.Pages()))},
		{Label: "Visits", Value: fmt.Sprintf("%d", a.stats.visits[i])},
		{Label: "Last settle", Value: last},
	}, cardW, bg)

	body := strings.Repeat("\n", offset) +
		titleStyle.Render(title) + "\n" +
		routeStyle.Render(page.Route) + "\n\n" +
		metrics

	if h >= 18 {
		detail := fmt.Sprintf("%s scheme, tinted %s, %d route writes",
			a.engine.Scheme(), page.Color(a.engine.Scheme()), a.engine.RouteWrites())
		detail = lipgloss.NewStyle().
			Foreground(fg).
			Background(bg).
			MaxWidth(components.CardInnerWidth(cardW)).
			Render(detail)
		body += "\n" + components.ContentCard("Backdrop", detail, cardW, bg)
	}

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(bg))
}

func (a App) renderHelp(w, h int) string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)
	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	body := titleStyle.Render("◈ Keyboard Shortcuts") + "\n\n" +
		a.help.FullHelpView(a.keys.FullHelp()) + "\n\n" +
		dimStyle.Render("Drag the page to swipe · click a tab to select · press any key to close")

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
