package cmd

import (
	"fmt"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/parquet"
	"github.com/spf13/cobra"
)

// exportCmd exports a session's scores to Parquet.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a session's scores to Parquet for analytics",
	Long: `Export every persisted score in a session to Parquet format for use
with analytics tools.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --session and --output-file parameters

Examples:
  # Export a session
  grantscope export --session 1b2f... --output-file scores.parquet

  # Query the export with DuckDB
  duckdb -c "SELECT opportunity_id, overall FROM read_parquet('scores.parquet') ORDER BY overall DESC"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.SessionID == "" {
			contract.LogFatal("Cannot export session", fmt.Errorf("--session is required"))
		}
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export session", fmt.Errorf("--output-file is required"))
		}

		session, err := sessionStore.GetSession(rootCtx, cfg.SessionID)
		if err != nil {
			contract.LogFatal("Cannot load session", err)
		}

		rows := parquet.ConvertGrantScores(session.Scores)
		if err := parquet.WriteScoreRows(rows, cfg.OutputFile); err != nil {
			contract.LogFatal("Cannot write parquet file", err)
		}
		fmt.Printf("Exported %d scores to %s\n", len(rows), cfg.OutputFile)
	},
}
