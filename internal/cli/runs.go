package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/caseworks/mysteryforge/internal/db"
)

// ledgerTimeLayout matches the TEXT timestamps the run ledger stores.
const ledgerTimeLayout = "2006-01-02 15:04:05"

// formatStarted converts a ledger timestamp to wall-clock time in loc.
// SQLite's datetime('now') stores UTC without a zone marker; anything
// that does not parse passes through untouched.
func formatStarted(s string, loc *time.Location) string {
	ts, err := time.ParseInLocation(ledgerTimeLayout, s, time.UTC)
	if err != nil {
		return s
	}
	return ts.In(loc).Format(ledgerTimeLayout)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := db.DefaultDBPath()
		if err != nil {
			return err
		}
		d, err := db.Open(path)
		if err != nil {
			return fmt.Errorf("open run ledger: %w", err)
		}
		defer d.Close()
		if err := d.Migrate(); err != nil {
			return fmt.Errorf("migrate run ledger: %w", err)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := d.ListRuns(limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-10s %-11s %-5s %-18s %-8s %-20s %s\n", "ID", "STATUS", "LANG", "THEME", "PLAYERS", "STARTED", "OUTPUT")
		fmt.Fprintf(w, "%-10s %-11s %-5s %-18s %-8s %-20s %s\n",
			strings.Repeat("-", 10),
			strings.Repeat("-", 11),
			strings.Repeat("-", 5),
			strings.Repeat("-", 18),
			strings.Repeat("-", 8),
			strings.Repeat("-", 20),
			strings.Repeat("-", 6))
		for _, r := range runs {
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			started := formatStarted(r.StartedAt, time.Local)
			fmt.Fprintf(w, "%-10s %-11s %-5s %-18s %-8d %-20s %s\n",
				id, r.Status, r.Language, r.Theme, r.Players, started, r.OutputPath)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to show")
}
