// Package cmd implements the pagesync CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/logging"
)

var (
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
	flagScheme   string
)

var rootCmd = &cobra.Command{
	Use:   "pagesync",
	Short: "Swipeable pager kept in sync with a route",
	Long: "pagesync keeps a swipeable set of pages, a tab indicator, a page-tinted\n" +
		"backdrop and a route string in agreement, in a terminal pager or a\n" +
		"headless daemon.",
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", config.Path(), "Config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagScheme, "scheme", "", "Page color scheme: light|dark (overrides config)")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadFile(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}
	if flagScheme != "" {
		cfg.General.ColorScheme = flagScheme
	}
	return cfg, nil
}

// openLogger opens the configured log file. The returned func closes it.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, closeFn, err := logging.Open(cfg.LogPath(), level)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}
	return logger, closeFn, nil
}
