package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/grantops/grantscope/core"
	"github.com/grantops/grantscope/internal/catalog"
	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/memcache"
	"github.com/grantops/grantscope/internal/store"
	"github.com/grantops/grantscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// Wired during sharedSetup from the validated config.
var (
	engine       *core.Engine
	sessionStore store.SessionStore
	fetcher      catalog.Fetcher
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "grantscope",
	Short:              "Score federal funding opportunities and build application portfolios.",
	Long:               `GrantScope ranks funding opportunities by competition, success odds, ROI, timing and hidden value so you apply where the math favors you.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	contract.SetupLogging()

	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".grantscope") // Name of config file (without extension)
		viper.SetConfigType("yaml")        // We'll use YAML format
		viper.AddConfigPath(".")           // Look in the current directory
		viper.AddConfigPath("$HOME")       // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("GRANTSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("cache-size", contract.DefaultCacheSize)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("risk-tolerance", schema.MediumTolerance)
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation and wires the scoring stack.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Initialize the session store with validated config.
	st, err := store.NewSessionStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	sessionStore = st

	// 5. Wire the catalog fetcher and the scoring engine.
	if cfg.CatalogFile != "" {
		fetcher = catalog.NewFileFetcher(cfg.CatalogFile)
	} else {
		fetcher = catalog.NewHTTPFetcher(cfg.CatalogBaseURL, nil)
	}
	engine = core.NewEngine(
		memcache.New(cfg.CacheSize, cfg.CacheTTL),
		sessionStore,
		cfg.Benchmarks,
		cfg.Workers,
		cfg.BatchTimeout,
	)

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".grantscope")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// migrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT open the store or create tables,
// allowing migrations to run on a fresh database.
func migrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// migrateSetupWrapper wraps migrateSetup to provide PreRunE for the migrate command.
func migrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return migrateSetup()
}

// catalogQuery summarizes the catalog filter for the session log.
func catalogQuery(cfg *contract.Config) string {
	var parts []string
	if cfg.Keyword != "" {
		parts = append(parts, "keyword="+cfg.Keyword)
	}
	if cfg.Agency != "" {
		parts = append(parts, "agency="+cfg.Agency)
	}
	if cfg.Category != "" {
		parts = append(parts, "category="+cfg.Category)
	}
	return strings.Join(parts, " ")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
