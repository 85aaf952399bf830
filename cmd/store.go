package cmd

import (
	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeCmd focused on store management.
//
// Note: clear and migrate use connSetup instead of the full sharedSetup, so they
// never create tables on the database they are about to change.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the changelog entry store",
	Long: `Manage the store holding changelog entries, package weights and runs.

Supported backends: SQLite (default), MySQL, PostgreSQL

Subcommands:
  status  - Show store statistics and connection info
  runs    - List recorded pipeline runs
  export  - Export every table to Parquet for analytics
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  # Check store status
  changescore store status

  # Export for analysis in pandas/DuckDB
  changescore store export --output-file changes`,
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, entry counts, unscored entries, weights, runs and the
size of the store.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := iocache.Manager.GetStore().GetStatus(rootCtx)
		if err != nil {
			return err
		}
		iocache.PrintStoreStatus(cmd.OutOrStdout(), status)
		return nil
	},
}

var storeRunsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "List recorded pipeline runs, newest first",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		runs, err := iocache.Manager.GetStore().ListRuns(rootCtx)
		if err != nil {
			return err
		}
		if len(runs) > cfg.ResultLimit {
			runs = runs[:cfg.ResultLimit]
		}
		return outwriter.NewOutWriter().WriteRuns(runs, cfg)
	},
}

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store to Parquet for BI tools and analytics",
	Long: `Export all stored data to Parquet files named after --output-file:

  <output-file>.entries.parquet
  <output-file>.package_weights.parquet
  <output-file>.runs.parquet

Examples:
  changescore store export --output-file changes
  duckdb -c "SELECT author, SUM(score) FROM read_parquet('changes.entries.parquet') GROUP BY 1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.ExportStore(rootCtx, cmd.OutOrStdout(), iocache.Manager.GetStore(), cfg.OutputFile)
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored entries, weights and runs",
	Long: `Delete everything changescore has stored.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the changescore tables

WARNING: This action cannot be undone. Consider exporting data first.`,
	Args:    cobra.NoArgs,
	PreRunE: connSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := iocache.ClearStore(cfg.Backend, cfg.DBConnect); err != nil {
			return err
		}
		cmd.Println("Store cleared successfully.")
		return nil
	},
}

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions of the store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  changescore store migrate

  # Rollback to initial state
  changescore store migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: connSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return iocache.MigrateStore(cmd.OutOrStdout(), cfg.Backend, cfg.DBConnect, viper.GetInt("target-version"))
	},
}
