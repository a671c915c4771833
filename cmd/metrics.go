package cmd

import (
	"fmt"

	"github.com/grantops/grantscope/schema"
	"github.com/spf13/cobra"
)

// metricPurposes summarizes what each calculator measures.
var metricPurposes = map[schema.MetricName]string{
	schema.CompetitionMetric: "How crowded the applicant pool is likely to be",
	schema.SuccessMetric:     "Estimated probability of winning an award",
	schema.ROIMetric:         "Expected award value against application effort",
	schema.TimingMetric:      "Deadline runway and concurrent deadline pressure",
	schema.HiddenMetric:      "Undervalued opportunities the market overlooks",
}

// metricsCmd lists the metric calculators and their active weights.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the scoring metrics and their active weights.",
	Long: `Display every metric calculator with its active aggregation weight.

The overall score is the weighted sum of the five component metrics, each
normalized to 0-100. Weights come from the defaults, the config file, or
flag overrides, and must sum to 1.

Examples:
  # Show active weights
  grantscope metrics

  # Verify a config file override took effect
  grantscope metrics --config ./custom.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		for _, name := range schema.AllMetrics {
			fmt.Printf("%-20s %.2f  %s\n", name, cfg.Weights[name], metricPurposes[name])
		}
	},
}
