package cmd

import (
	"fmt"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/outwriter"
	"github.com/spf13/cobra"
)

// portfolioCmd synthesizes a tiered application portfolio from a session.
var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Build a reach/match/safety portfolio from a scored session.",
	Long: `Partition a persisted session's scores into reach, match and safety
tiers under a chosen risk tolerance, ranked within each tier by overall
score and risk-adjusted ROI.

The report includes a diversity score against the ideal tier mix and the
expected success rate across the portfolio. Incomplete scores are
counted as skipped, never silently dropped.

Examples:
  # Build a balanced portfolio from a session
  grantscope portfolio --session 1b2f...

  # Favor long-shot, high-upside opportunities
  grantscope portfolio --session 1b2f... --risk-tolerance high

  # Export the recommendations
  grantscope portfolio --session 1b2f... --output csv --output-file portfolio.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.SessionID == "" {
			contract.LogFatal("Cannot build portfolio", fmt.Errorf("--session is required"))
		}

		report, err := engine.BuildPortfolio(rootCtx, cfg.SessionID, cfg.RiskTolerance)
		if err != nil {
			contract.LogFatal("Cannot build portfolio", err)
		}
		if err := outwriter.WritePortfolioReport(report, cfg); err != nil {
			contract.LogFatal("Cannot write portfolio report", err)
		}
	},
}
