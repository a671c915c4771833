// Package cmd defines the command-line interface for grantscope.
package cmd

import (
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(portfolioCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the sessions subcommands to the parent sessions command
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsStatusCmd)
	sessionsCmd.AddCommand(sessionsMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("keyword", "k", "", "Keyword to search the grants catalog for")
	rootCmd.PersistentFlags().String("agency", "", "Agency code filter (e.g., NSF, NIH, DOE)")
	rootCmd.PersistentFlags().String("category", "", "Funding category filter (e.g., 'Science and Technology')")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent scoring workers")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("detail", false, "Print per-metric columns and score drivers")
	rootCmd.PersistentFlags().Int("cache-size", contract.DefaultCacheSize, "Maximum entries in the component score cache")
	rootCmd.PersistentFlags().String("cache-ttl", "", "Component cache time-to-live (e.g., 15m, 1h)")
	rootCmd.PersistentFlags().String("timeout", "", "Batch scoring timeout (e.g., 2m, 30s)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Session store backend: sqlite or mysql or postgresql or memory")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("benchmarks-file", "", "Path to a YAML file with benchmark table overrides")
	rootCmd.PersistentFlags().String("profile-file", "", "Path to a YAML applicant profile for personalized scoring")
	rootCmd.PersistentFlags().String("catalog-url", "", "Grants catalog API base URL (defaults to the public endpoint)")
	rootCmd.PersistentFlags().String("catalog-file", "", "Offline JSON catalog dump; overrides the HTTP catalog")
	rootCmd.PersistentFlags().StringP("session", "s", "", "Session identifier to append to or read from")
	rootCmd.PersistentFlags().String("risk-tolerance", string(schema.MediumTolerance), "Portfolio risk tolerance: low or medium or high")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of sessionsMigrateCmd to Viper
	sessionsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(sessionsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sessions migrate flags", err)
	}
}
