package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/store"
	"github.com/theirongolddev/pagesync/internal/tui"
)

var (
	flagTUILink    string
	flagTUINoBell  bool
	flagTUINoSetup bool
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive pager",
	RunE:  runTUI,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&flagTUILink, "link", "", "Open this route after start, as an external deep link")
		c.Flags().BoolVar(&flagTUINoBell, "no-bell", false, "Never ring the terminal bell")
		c.Flags().BoolVar(&flagTUINoSetup, "no-setup", false, "Skip the first-run setup form")
	}
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var journal *store.Journal
	if cfg.Daemon.Journal {
		journal, err = store.Open(config.JournalPath())
		if err != nil {
			logger.Warn("journal unavailable", "err", err)
			journal = nil
		} else {
			defer func() { _ = journal.Close() }()
			if _, err := journal.Begin("tui", len(cfg.Pages)); err != nil {
				logger.Warn("journal session", "err", err)
				journal = nil
			}
		}
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Config:     cfg,
		ConfigPath: flagConfig,
		Logger:     logger,
		Bell:       os.Stderr,
		NeedSetup:  !flagTUINoSetup && !config.Exists(flagConfig),
		Journal:    journal,
	}
	if flagTUINoBell {
		opts.Bell = nil
	}
	app, err := tui.NewApp(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if flagTUILink != "" {
		go p.Send(tui.RouteMsg{Path: flagTUILink})
	}

	logger.Info("tui started", "route", cfg.General.StartRoute, "pages", len(cfg.Pages))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
