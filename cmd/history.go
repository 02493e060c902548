package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/pagesync/internal/cli"
	"github.com/theirongolddev/pagesync/internal/config"
	"github.com/theirongolddev/pagesync/internal/store"
)

var (
	flagHistoryLimit int
	flagHistoryPrune time.Duration
	flagJournalPath  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently settled transitions from the journal",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().DurationVar(&flagHistoryPrune, "prune", 0, "Delete entries older than this first (e.g. 168h)")
	historyCmd.Flags().StringVar(&flagJournalPath, "journal", config.JournalPath(), "Journal database path")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	if !config.Exists(flagJournalPath) {
		fmt.Println("  No journal yet. Settles are recorded by `pagesync` and `pagesync daemon`.")
		return nil
	}

	j, err := store.Open(flagJournalPath)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()

	now := time.Now()
	if flagHistoryPrune > 0 {
		n, err := j.Prune(now.Add(-flagHistoryPrune))
		if err != nil {
			return err
		}
		fmt.Printf("  Pruned %d entries older than %s\n", n, cli.FormatDuration(flagHistoryPrune))
	}

	entries, err := j.Recent(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("  Journal is empty.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		session := e.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		rows = append(rows, []string{
			cli.FormatAgo(e.At, now),
			session,
			e.Source,
			cli.FormatIndexMove(e.From, e.To),
			e.Route,
			cli.RenderWritten(e.RouteWritten),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Last %d settles", len(entries)),
		Headers: []string{"When", "Session", "Source", "Move", "Route", "Write-back"},
		Rows:    rows,
	}))
	return nil
}
