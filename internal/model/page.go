// Package model defines the page data types shared by the engine, config, and hosts.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Page is one entry of the ordered pager. Order defines index semantics.
type Page struct {
	Name       string `toml:"name"`
	Title      string `toml:"title"`
	Icon       string `toml:"icon"`
	Route      string `toml:"route"`
	ColorLight string `toml:"color_light"`
	ColorDark  string `toml:"color_dark"`
}

// ColorScheme selects which reference color of a page is used for the backdrop.
type ColorScheme string

const (
	SchemeLight ColorScheme = "light"
	SchemeDark  ColorScheme = "dark"
)

// ParseColorScheme maps a config string to a scheme, defaulting to dark.
func ParseColorScheme(s string) ColorScheme {
	if strings.EqualFold(strings.TrimSpace(s), string(SchemeLight)) {
		return SchemeLight
	}
	return SchemeDark
}

// Toggle returns the opposite scheme.
func (c ColorScheme) Toggle() ColorScheme {
	if c == SchemeLight {
		return SchemeDark
	}
	return SchemeLight
}

// Color returns the page's reference color for the given scheme.
func (p Page) Color(scheme ColorScheme) string {
	if scheme == SchemeLight {
		return p.ColorLight
	}
	return p.ColorDark
}

// Pages is the ordered, immutable page list.
type Pages []Page

var errNoPages = errors.New("no pages configured")

// Validate checks that the list is usable by the engine: at least one page,
// unique names and routes, and parseable colors.
func (ps Pages) Validate() error {
	if len(ps) == 0 {
		return errNoPages
	}
	names := make(map[string]int, len(ps))
	routes := make(map[string]int, len(ps))
	for i, p := range ps {
		if p.Name == "" {
			return fmt.Errorf("page %d: missing name", i)
		}
		if prev, ok := names[p.Name]; ok {
			return fmt.Errorf("page %d: name %q already used by page %d", i, p.Name, prev)
		}
		names[p.Name] = i

		if !strings.HasPrefix(p.Route, "/") {
			return fmt.Errorf("page %q: route %q must start with /", p.Name, p.Route)
		}
		if prev, ok := routes[p.Route]; ok {
			return fmt.Errorf("page %q: route %q already used by page %d", p.Name, p.Route, prev)
		}
		routes[p.Route] = i

		for _, c := range []string{p.ColorLight, p.ColorDark} {
			if _, err := colorful.Hex(c); err != nil {
				return fmt.Errorf("page %q: color %q: %w", p.Name, c, err)
			}
		}
	}
	return nil
}

// IndexOf returns the index of the page with the given name, or -1.
func (ps Pages) IndexOf(name string) int {
	for i, p := range ps {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Colors returns the reference colors for every page in order.
func (ps Pages) Colors(scheme ColorScheme) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Color(scheme)
	}
	return out
}
