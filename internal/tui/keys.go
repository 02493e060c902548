package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the pager.
type KeyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Page     key.Binding // digits 1-9 select a page directly
	Route    key.Binding // open the route prompt
	Drawer   key.Binding
	Back     key.Binding
	Scheme   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	DrawerUp key.Binding
	DrawerDn key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Prev: key.NewBinding(
		key.WithKeys("h", "left", "shift+tab"),
		key.WithHelp("h/←", "prev page"),
	),
	Next: key.NewBinding(
		key.WithKeys("l", "right", "tab"),
		key.WithHelp("l/→", "next page"),
	),
	Page: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "jump to page"),
	),
	Route: key.NewBinding(
		key.WithKeys("/", "g"),
		key.WithHelp("/", "open route"),
	),
	Drawer: key.NewBinding(
		key.WithKeys("m", "d"),
		key.WithHelp("m", "menu"),
	),
	Back: key.NewBinding(
		key.WithKeys("b", "backspace"),
		key.WithHelp("b", "back"),
	),
	Scheme: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "light/dark"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "go"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	DrawerUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	DrawerDn: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Route, k.Drawer, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.Page},
		{k.Route, k.Drawer, k.Back},
		{k.Scheme, k.Help, k.Quit},
	}
}
