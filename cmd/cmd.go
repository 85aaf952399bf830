// Package cmd defines the command-line interface for changescore.
package cmd

import (
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the weights subcommands to the parent weights command
	weightsCmd.AddCommand(weightsSetCmd)
	weightsCmd.AddCommand(weightsListCmd)
	weightsCmd.AddCommand(weightsRmCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeRunsCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("base", "b", contract.DefaultBaseDir, "Directory holding <pkg>/<pkg>.changes files")
	rootCmd.PersistentFlags().StringP("db", "d", "", "SQLite file, or connection string for mysql/postgresql (default changes.sqlite)")
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Command flags are bound to Viper by sharedSetup for the command being run.
	addPipelineFlags(runCmd)
	addPipelineFlags(scheduleCmd)
	scheduleCmd.Flags().String("schedule", contract.DefaultSchedule, "Cron expression of the runs (minute hour day month weekday)")

	addFastFlag(importCmd)
	importCmd.Flags().Bool("flush-trailing", false, "Keep a final block that has no closing separator")
	addFastFlag(scoreCmd)
	addThresholdFlags(reportCmd)
	reportCmd.Flags().Bool("digests", false, "Print the digests instead of the author ranking")

	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

// addPipelineFlags adds the flags of a full pipeline run.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("convert", "c", false, "Import changelogs before scoring")
	cmd.Flags().BoolP("reset", "r", false, "Reset every score before scoring")
	cmd.Flags().BoolP("mail", "m", false, "Mail the digests instead of printing them")
	addFastFlag(cmd)
	addThresholdFlags(cmd)
}

// addFastFlag adds --fast, also accepted as --ugly-hack.
func addFastFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("fast", "u", false, "Force-mode import and bulk keyword scoring")
	cmd.Flags().SetNormalizeFunc(fastAlias)
}

// addThresholdFlags adds the reporter cutoffs.
func addThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("email-threshold", "e", contract.DefaultEmailThreshold, "Author cutoff, in multiples of the default points")
	cmd.Flags().Float64P("package-threshold", "p", contract.DefaultPackageThreshold, "Package cutoff, in multiples of the default points")
}

func fastAlias(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "ugly-hack" {
		name = "fast"
	}
	return pflag.NormalizedName(name)
}
