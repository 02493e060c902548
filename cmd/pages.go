package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pagesync/internal/cli"
	"github.com/theirongolddev/pagesync/internal/client"
	"github.com/theirongolddev/pagesync/internal/nav"
)

var (
	flagRouteSend bool
	flagRouteAddr string
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List configured pages and their routes",
	RunE:  runPages,
}

var routeCmd = &cobra.Command{
	Use:   "route <path>",
	Short: "Resolve a route to a page, or send it to a running daemon",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().BoolVar(&flagRouteSend, "send", false, "Navigate the running daemon to the path")
	routeCmd.Flags().StringVar(&flagRouteAddr, "addr", "", "Daemon address (default from config)")
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(routeCmd)
}

func runPages(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := nav.NewRouteTable(cfg.Pages, cfg.General.DefaultPage)
	if err != nil {
		return err
	}
	start, _ := table.Resolve(cfg.General.StartRoute)

	scheme := cfg.Scheme()
	rows := make([][]string, 0, len(cfg.Pages))
	for i, p := range cfg.Pages {
		name := p.Name
		if i == table.Default() {
			name += " (fallback)"
		}
		rows = append(rows, []string{
			cli.RenderPageMarker(i == start) + " " + strconv.Itoa(i),
			name,
			p.Icon + " " + p.Title,
			p.Route,
			cli.RenderSwatch(p.Color(scheme)),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Pages (%s scheme, start %s)", scheme, cfg.General.StartRoute),
		Headers: []string{"#", "Name", "Title", "Route", "Color"},
		Rows:    rows,
	}))
	return nil
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := nav.NewRouteTable(cfg.Pages, cfg.General.DefaultPage)
	if err != nil {
		return err
	}

	path := nav.NormalizePath(args[0])
	index, err := table.Resolve(path)
	fallback := errors.Is(err, nav.ErrUnroutablePath)
	if err != nil && !fallback {
		return err
	}
	page := cfg.Pages[index]

	fmt.Printf("  Path:  %s\n", path)
	fmt.Printf("  Page:  %d %s (%s)\n", index, page.Name, page.Title)
	canonical, _ := table.PathFor(index)
	fmt.Printf("  Route: %s\n", canonical)
	if fallback {
		fmt.Println("  " + cli.RenderWarning("no page claims this path; showing the fallback page"))
	}

	if !flagRouteSend {
		return nil
	}

	addr := flagRouteAddr
	if addr == "" {
		addr = cfg.Daemon.Addr
	}
	st, err := client.New(addr).Navigate(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("sending route to daemon at %s: %w", addr, err)
	}
	fmt.Println()
	fmt.Printf("  Daemon now on %s (index %d, route %s)\n", st.Page, st.ActiveIndex, st.Route)
	return nil
}
