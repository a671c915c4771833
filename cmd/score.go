package cmd

import (
	"github.com/grantops/grantscope/core"
	"github.com/grantops/grantscope/internal/catalog"
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/outwriter"
	"github.com/spf13/cobra"
)

// scoreCmd fetches opportunities and scores them.
var scoreCmd = &cobra.Command{
	Use:   "score [opportunity-id...]",
	Short: "Fetch and score funding opportunities.",
	Long: `Fetch funding opportunities from the grants catalog and score each one
across five metrics: competition, success probability, ROI, timing and
hidden opportunity.

Every run is persisted as a scoring session so results can be explained,
compared over time, and synthesized into a portfolio later.

Positional opportunity IDs narrow the report to those IDs; requested IDs
with no catalog record are reported as incomplete rather than dropped.

Examples:
  # Score everything matching a keyword
  grantscope score --keyword climate

  # Score NSF technology opportunities with per-metric detail
  grantscope score --agency NSF --category "Science and Technology" --detail

  # Append a fresh scoring pass to an existing session
  grantscope score --keyword climate --session 1b2f...

  # Score from an offline catalog dump and export to CSV
  grantscope score --catalog-file dump.json --output csv --output-file scores.csv`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		records, err := fetcher.FetchOpportunities(rootCtx, catalog.Filter{
			Keyword:  cfg.Keyword,
			Agency:   cfg.Agency,
			Category: cfg.Category,
			Limit:    cfg.ResultLimit,
		})
		if err != nil {
			contract.LogFatal("Cannot fetch opportunities", err)
		}

		result, err := engine.Score(rootCtx, core.ScoreRequest{
			Opportunities: records,
			RequestedIDs:  args,
			Weights:       cfg.Weights,
			Profile:       cfg.Profile,
			Query:         catalogQuery(cfg),
			SessionID:     cfg.SessionID,
		})
		if err != nil {
			contract.LogFatal("Cannot score opportunities", err)
		}

		if result.Partial {
			contract.LogWarn("Batch timed out before every opportunity was scored", nil)
		}
		if result.PersistErr != nil {
			contract.LogWarn("Scores could not be persisted", result.PersistErr)
		} else if result.SessionID != "" {
			contract.LogInfo("Session " + result.SessionID)
		}

		if err := outwriter.WriteScoreResults(result.Scores, cfg, result.Elapsed); err != nil {
			contract.LogFatal("Cannot write score results", err)
		}
	},
}
