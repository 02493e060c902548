// Package config loads and saves the pagesync TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/pagesync/internal/model"
	"github.com/theirongolddev/pagesync/internal/nav"
)

// Config holds all pagesync configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Animation  AnimationConfig  `toml:"animation"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
	Pages      model.Pages      `toml:"pages"`
}

// GeneralConfig holds navigation preferences.
type GeneralConfig struct {
	StartRoute  string `toml:"start_route"`
	ColorScheme string `toml:"color_scheme"`
	DefaultPage int    `toml:"default_page"`
	Haptics     bool   `toml:"haptics"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// AnimationConfig tunes the tap animation and the indicator bounce.
type AnimationConfig struct {
	TapDurationMS   int     `toml:"tap_duration_ms"`
	FrameRate       int     `toml:"frame_rate"`
	BouncePeak      float64 `toml:"bounce_peak"`
	BounceGrowMS    int     `toml:"bounce_grow_ms"`
	SpringFrequency float64 `toml:"spring_frequency"`
	SpringDamping   float64 `toml:"spring_damping"`
}

// DaemonConfig holds headless daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
	Journal      bool   `toml:"journal"`
	// GestureTimeoutMS settles a remote gesture that stops sending updates.
	GestureTimeoutMS int `toml:"gesture_timeout_ms"`
}

// LogConfig holds logger settings. An empty File means the default log file
// under CacheDir.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultPages returns the four-page layout: balance, wallet, statistics,
// and budget, with wallet living at the root route.
func DefaultPages() model.Pages {
	return model.Pages{
		{Name: "balance", Title: "Balance", Icon: "◎", Route: "/balance", ColorLight: "#E8F5E9", ColorDark: "#1B3A2A"},
		{Name: "wallet", Title: "Wallet", Icon: "▣", Route: "/", ColorLight: "#E3F2FD", ColorDark: "#132F4C"},
		{Name: "statistics", Title: "Statistics", Icon: "▤", Route: "/statistics", ColorLight: "#FFF3E0", ColorDark: "#3E2A14"},
		{Name: "budget", Title: "Budget", Icon: "◈", Route: "/budget", ColorLight: "#F3E5F5", ColorDark: "#33203D"},
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	bounce := nav.DefaultBounce()
	return Config{
		General: GeneralConfig{
			StartRoute:  "/",
			ColorScheme: string(model.SchemeDark),
			Haptics:     true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Animation: AnimationConfig{
			TapDurationMS:   300,
			FrameRate:       60,
			BouncePeak:      bounce.Peak,
			BounceGrowMS:    int(bounce.Grow / time.Millisecond),
			SpringFrequency: bounce.Frequency,
			SpringDamping:   bounce.Damping,
		},
		Daemon: DaemonConfig{
			Addr:             "127.0.0.1:8787",
			EventsBuffer:     200,
			Journal:          true,
			GestureTimeoutMS: 10000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Pages: DefaultPages(),
	}
}

// TapDuration returns the animated tap duration.
func (c Config) TapDuration() time.Duration {
	return time.Duration(c.Animation.TapDurationMS) * time.Millisecond
}

// GestureTimeout returns how long the daemon waits on a silent gesture.
func (c Config) GestureTimeout() time.Duration {
	return time.Duration(c.Daemon.GestureTimeoutMS) * time.Millisecond
}

// Bounce returns the indicator bounce settings.
func (c Config) Bounce() nav.Bounce {
	return nav.Bounce{
		Peak:      c.Animation.BouncePeak,
		Grow:      time.Duration(c.Animation.BounceGrowMS) * time.Millisecond,
		Frequency: c.Animation.SpringFrequency,
		Damping:   c.Animation.SpringDamping,
	}
}

// Scheme returns the configured color scheme.
func (c Config) Scheme() model.ColorScheme {
	return model.ParseColorScheme(c.General.ColorScheme)
}

// Validate checks pages and animation bounds.
func (c Config) Validate() error {
	if err := c.Pages.Validate(); err != nil {
		return fmt.Errorf("pages: %w", err)
	}
	if c.General.DefaultPage < 0 || c.General.DefaultPage >= len(c.Pages) {
		return fmt.Errorf("general.default_page %d out of range [0, %d]", c.General.DefaultPage, len(c.Pages)-1)
	}
	a := c.Animation
	var errs []error
	if a.TapDurationMS < 0 {
		errs = append(errs, fmt.Errorf("animation.tap_duration_ms must be >= 0, got %d", a.TapDurationMS))
	}
	if a.FrameRate < 1 || a.FrameRate > 240 {
		errs = append(errs, fmt.Errorf("animation.frame_rate must be in [1, 240], got %d", a.FrameRate))
	}
	if a.BouncePeak < 1 {
		errs = append(errs, fmt.Errorf("animation.bounce_peak must be >= 1, got %g", a.BouncePeak))
	}
	if a.BounceGrowMS < 0 {
		errs = append(errs, fmt.Errorf("animation.bounce_grow_ms must be >= 0, got %d", a.BounceGrowMS))
	}
	if c.Daemon.GestureTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("daemon.gesture_timeout_ms must be >= 0, got %d", c.Daemon.GestureTimeoutMS))
	}
	if a.SpringFrequency <= 0 || a.SpringDamping <= 0 {
		errs = append(errs, errors.New("animation.spring_frequency and spring_damping must be positive"))
	}
	return errors.Join(errs...)
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pagesync")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pagesync")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// CacheDir returns the XDG-compliant directory for logs, pid files and the journal.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "pagesync")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "pagesync")
}

// JournalPath returns the default sqlite journal location.
func JournalPath() string {
	return filepath.Join(CacheDir(), "journal.db")
}

// LogPath returns the configured log file, or the default one.
func (c Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(CacheDir(), "pagesync.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path. Missing files yield the defaults; a file
// without [[pages]] keeps the default pages.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// Pages from the file replace the defaults instead of merging into them.
	cfg.Pages = nil
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.Pages) == 0 {
		cfg.Pages = DefaultPages()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // config path is chosen by the local user
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
