package cmd

import (
	"github.com/spf13/cobra"

	"github.com/benchvis/breakeven/core"
	"github.com/benchvis/breakeven/internal/contract"
)

// subsetCmd performs the subset verification breakeven analysis.
var subsetCmd = &cobra.Command{
	Use:   "subset [results-root]",
	Short: "Chart subset verification against full verification per variant.",
	Long: `Analyze benchmark results for subset verification and chart the breakeven point.

For each signature variant, plots fast verification time across the number of
verified indices against the flat full-verification baseline, and annotates the
interpolated index count where the two costs meet.

Cells without measurements are charted as gaps, never as zeros. A measurement
file that exists but cannot be parsed aborts the analysis.

Examples:
  # Analyze the default results tree
  breakeven subset

  # Analyze a specific tree with a custom index axis
  breakeven subset ./bench-results --indices 1,2,4,8,16

  # Include the C reference baseline
  breakeven subset --reference`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := core.NewFSEstimateSource(cfg.ResultsRoot)
		if err := core.ExecuteSubset(cfg, src, runStore); err != nil {
			contract.LogFatal("Cannot run subset analysis", err)
		}
	},
}
