package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCmd focused on component cache inspection.
//
// Note: The component cache is in-process and rebuilt on every run, so these
// commands report resolved configuration rather than persisted state.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the component score cache configuration",
	Long: `Inspect the in-process component score cache.

Component scores are cached per (opportunity, metric, inputs) so repeated
scoring of unchanged records within a run reuses prior arithmetic. The
cache is bounded, entries expire after a TTL, and it lives for the
duration of a single process.

Subcommands:
  status - Show resolved cache configuration

Examples:
  # Check cache configuration
  grantscope cache status`,
}

// cacheStatusCmd shows resolved cache settings.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display resolved cache configuration",
	Long: `Show the component cache settings after merging defaults, config file,
environment variables and flags.

Examples:
  # Check cache configuration
  grantscope cache status

  # Verify an override took effect
  GRANTSCOPE_CACHE_SIZE=4096 grantscope cache status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Max entries: %d\n", cfg.CacheSize)
		fmt.Printf("TTL:         %s\n", cfg.CacheTTL)
		fmt.Printf("Workers:     %d\n", cfg.Workers)
		fmt.Printf("Timeout:     %s\n", cfg.BatchTimeout)
	},
}
