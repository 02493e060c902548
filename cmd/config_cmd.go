package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/tui"
	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup form",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(setupCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", flagConfig)
	if config.Exists(flagConfig) {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Start route:   %s\n", cfg.General.StartRoute)
	fmt.Printf("    Color scheme:  %s\n", cfg.Scheme())
	fmt.Printf("    Fallback page: %s\n", cfg.Pages[cfg.General.DefaultPage].Name)
	fmt.Printf("    Haptics:       %v\n", cfg.General.Haptics)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:     %s\n", cfg.Appearance.Theme)
	fmt.Printf("    Available: %s\n", strings.Join(theme.Names(), ", "))
	fmt.Println()

	fmt.Println("  [Animation]")
	fmt.Printf("    Tap duration: %s\n", cfg.TapDuration())
	fmt.Printf("    Frame rate:   %d fps\n", cfg.Animation.FrameRate)
	b := cfg.Bounce()
	fmt.Printf("    Bounce:       peak %.2f over %s, spring %.1f/%.2f\n", b.Peak, b.Grow, b.Frequency, b.Damping)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Printf("    Gesture idle:  %s\n", cfg.GestureTimeout())
	if cfg.Daemon.Journal {
		fmt.Printf("    Journal:       %s\n", config.JournalPath())
	} else {
		fmt.Println("    Journal:       off")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level: %s\n", cfg.Log.Level)
	fmt.Printf("    File:  %s\n", cfg.LogPath())
	fmt.Println()

	fmt.Printf("  %d pages; run `pagesync pages` to list them.\n", len(cfg.Pages))
	fmt.Println("  Run `pagesync setup` to reconfigure.")
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg, err = tui.RunSetup(cfg)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := config.SaveFile(flagConfig, cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", flagConfig)
	fmt.Println("  Run `pagesync setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
