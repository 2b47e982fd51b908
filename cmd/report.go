package cmd

import (
	"github.com/spf13/cobra"

	"github.com/benchvis/breakeven/core"
	"github.com/benchvis/breakeven/internal/contract"
	"github.com/benchvis/breakeven/internal/outwriter"
)

// reportCmd lists every configured cell with its loaded estimate.
var reportCmd = &cobra.Command{
	Use:   "report [results-root]",
	Short: "List every configured benchmark cell with its loaded estimate.",
	Long: `Enumerate all configured benchmark cells and report their estimates.

Cells are listed in enumeration order: subset cells and baselines per variant,
then stream cells. Unmeasured cells stay in the report with explicit gaps so
coverage holes are visible; they are never rendered as zeros.

Examples:
  # Human-readable table
  breakeven report

  # Raw nanoseconds as CSV for spreadsheets
  breakeven report --output csv --output-file estimates.csv

  # Columnar export for DuckDB/pandas
  breakeven report --output parquet --output-file estimates.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := core.NewFSEstimateSource(cfg.ResultsRoot)
		cells, estimates, err := core.LoadReport(cfg, src)
		if err != nil {
			contract.LogFatal("Cannot load estimates", err)
		}
		rows := outwriter.BuildReportRows(cells, estimates)
		if err := outwriter.WriteReport(rows, cfg); err != nil {
			contract.LogFatal("Cannot write report", err)
		}
	},
}
