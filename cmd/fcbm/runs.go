package main

import (
	"encoding/json"
	"fmt"
	"time"

	"forest-cover-benchmark/internal/report"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func (a *app) runsCmd() *cobra.Command {
	var (
		ledgerPath string
		limit      int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List classification runs recorded in a ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := report.OpenLedger(ledgerPath)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if format == report.FormatJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Run", "Project", "Finished", "Resolution (m)", "Total (ha)", "Unclassified px")
			for _, r := range runs {
				t.Row(
					r.RunID,
					r.Project,
					r.FinishedAt.Local().Format(time.DateTime),
					fmt.Sprintf("%gx%g", r.ResolutionX, r.ResolutionY),
					fmt.Sprintf("%.2f", r.TotalHectares),
					fmt.Sprintf("%d", r.Unclassified),
				)
			}
			_, err = fmt.Fprintln(a.out, t.String())
			return err
		},
	}
	cmd.Flags().StringVar(&ledgerPath, "ledger", "runs.db", "SQLite run ledger")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&format, "format", report.FormatText, "output format (text, json)")
	return cmd
}
