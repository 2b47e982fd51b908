package cmd

import (
	"github.com/spf13/cobra"

	"github.com/benchvis/breakeven/core"
	"github.com/benchvis/breakeven/internal/contract"
)

// streamCmd performs the stream verification analysis.
var streamCmd = &cobra.Command{
	Use:   "stream [results-root]",
	Short: "Chart fast-then-full stream verification against full-only verification.",
	Long: `Analyze stream verification benchmarks across invalid-signature fractions.

For each signature variant, plots the fast-then-full batch timing per configured
index count across the fraction axis, against the median full-verification
baseline for that variant. The baseline is the median of the per-fraction
full-verification runs, since full verification does not depend on the fraction.

Examples:
  # Analyze the default results tree
  breakeven stream

  # Restrict to one variant and custom fractions
  breakeven stream --variants 512 --fractions 0.01,0.5,0.99`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := core.NewFSEstimateSource(cfg.ResultsRoot)
		if err := core.ExecuteStream(cfg, src, runStore); err != nil {
			contract.LogFatal("Cannot run stream analysis", err)
		}
	},
}
