package cmd

import (
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/outwriter"
	"github.com/spf13/cobra"
)

// explainCmd shows the full component breakdown for one opportunity.
var explainCmd = &cobra.Command{
	Use:   "explain <opportunity-id>",
	Short: "Show the full score breakdown for one opportunity.",
	Long: `Display the most recent persisted score for an opportunity with every
component metric, its explanation terms, and the inputs that were
substituted with defaults.

The breakdown is reconstructed from the session store, so the arithmetic
reflects exactly what was computed at scoring time, not a fresh run.

Examples:
  # Explain the latest score for an opportunity
  grantscope explain NSF-26-001

  # Export the breakdown for a report
  grantscope explain NSF-26-001 --output csv --output-file breakdown.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		score, err := engine.Explain(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Cannot explain score", err)
		}
		if err := outwriter.WriteExplanation(score, cfg); err != nil {
			contract.LogFatal("Cannot write explanation", err)
		}
	},
}
