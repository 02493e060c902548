package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/model"
	"github.com/theirongolddev/pagesync/internal/tui/theme"
)

// setupValues holds the answers of the setup form.
type setupValues struct {
	theme       string
	scheme      string
	startPage   string
	haptics     bool
	tapDuration string
}

func setupValuesFrom(cfg config.Config) setupValues {
	start := ""
	if i := cfg.General.DefaultPage; i >= 0 && i < len(cfg.Pages) {
		start = cfg.Pages[i].Name
	}
	return setupValues{
		theme:       cfg.Appearance.Theme,
		scheme:      string(cfg.Scheme()),
		startPage:   start,
		haptics:     cfg.General.Haptics,
		tapDuration: strconv.Itoa(cfg.Animation.TapDurationMS),
	}
}

// newSetupForm builds the setup form over vals.
func newSetupForm(pages model.Pages, vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}
	pageOpts := make([]huh.Option[string], 0, len(pages))
	for _, p := range pages {
		pageOpts = append(pageOpts, huh.NewOption(fmt.Sprintf("%s (%s)", p.Title, p.Route), p.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to pagesync").
				Description("A few choices; rerun `pagesync setup` anytime."),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
			huh.NewSelect[string]().
				Title("Page colors").
				Options(
					huh.NewOption("Dark", string(model.SchemeDark)),
					huh.NewOption("Light", string(model.SchemeLight)),
				).
				Value(&vals.scheme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Fallback page").
				Description("Shown for / and for routes no page claims.").
				Options(pageOpts...).
				Value(&vals.startPage),
			huh.NewInput().
				Title("Tab animation (ms)").
				Value(&vals.tapDuration).
				Validate(validateTapDuration),
			huh.NewConfirm().
				Title("Ring the bell on tab selection?").
				Value(&vals.haptics),
		),
	).WithShowHelp(true)
}

func validateTapDuration(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter a whole number of milliseconds")
	}
	if n < 0 || n > 5000 {
		return errors.New("must be between 0 and 5000")
	}
	return nil
}

// apply copies the answers into cfg.
func (v setupValues) apply(cfg *config.Config) error {
	if err := validateTapDuration(v.tapDuration); err != nil {
		return fmt.Errorf("tap duration: %w", err)
	}
	ms, _ := strconv.Atoi(strings.TrimSpace(v.tapDuration))

	cfg.Appearance.Theme = theme.ByName(v.theme).Name
	cfg.General.ColorScheme = string(model.ParseColorScheme(v.scheme))
	cfg.General.Haptics = v.haptics
	cfg.Animation.TapDurationMS = ms
	if i := cfg.Pages.IndexOf(v.startPage); i >= 0 {
		cfg.General.DefaultPage = i
	}
	return nil
}

// RunSetup runs the setup form standalone and returns the updated config.
// The caller saves it.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := setupValuesFrom(cfg)
	if err := newSetupForm(cfg.Pages, &vals).Run(); err != nil {
		return cfg, err
	}
	if err := vals.apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
