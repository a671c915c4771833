package cmd

import (
	"fmt"
	"time"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/outwriter"
	"github.com/grantops/grantscope/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sessionsCmd focused on scoring session management.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage persisted scoring sessions",
	Long: `Manage the append-only log of scoring sessions.

Every score run is persisted as a session: the catalog query that produced
it plus every score with its full component breakdown. Sessions feed the
explain and portfolio commands and let you track score drift over time.

Supported backends: SQLite (default), MySQL, PostgreSQL, or memory

Subcommands:
  list    - Show recent sessions, newest first
  status  - Show store statistics and connection info
  migrate - Run database schema migrations

Examples:
  # List the last 20 sessions
  grantscope sessions list

  # Check store health
  grantscope sessions status`,
}

// sessionsListCmd lists recent sessions.
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent scoring sessions, newest first",
	Long: `List persisted scoring sessions without their score logs.

Each row shows the session identifier, creation time, score count and the
catalog query that produced it. Use the identifier with the portfolio
command or with 'score --session' to append to it.

Examples:
  # List the most recent sessions
  grantscope sessions list

  # List more sessions as JSON
  grantscope sessions list --limit 100 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		sessions, err := sessionStore.ListRecent(rootCtx, cfg.ResultLimit)
		if err != nil {
			contract.LogFatal("Cannot list sessions", err)
		}
		if err := outwriter.WriteSessionList(sessions, cfg); err != nil {
			contract.LogFatal("Cannot write session list", err)
		}
	},
}

// sessionsStatusCmd shows session store status.
var sessionsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display session store statistics and connection details",
	Long: `Show detailed information about the session store.

Displays:
- Backend type and connection status
- Total number of sessions and persisted scores
- Timestamp of the most recent score

Examples:
  # Check store status
  grantscope sessions status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := sessionStore.Status(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot get store status", err)
		}
		fmt.Printf("Backend:   %s\n", status.Backend)
		fmt.Printf("Connected: %t\n", status.Connected)
		fmt.Printf("Sessions:  %d\n", status.SessionCount)
		fmt.Printf("Scores:    %d\n", status.ScoreCount)
		if !status.LastEntryTime.IsZero() {
			fmt.Printf("Last score: %s\n", status.LastEntryTime.Format(time.RFC3339))
		}
	},
}

// sessionsMigrateCmd runs database migrations for the session store.
var sessionsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the session store.

Migrations allow:
- Upgrading to new schema versions when GrantScope is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  grantscope sessions migrate

  # Rollback to initial state
  grantscope sessions migrate --target-version 0`,
	PreRunE: migrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := store.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
