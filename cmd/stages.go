package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/changescore/core"
	"github.com/huangsam/changescore/core/changelog"
	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/outwriter"
	"github.com/huangsam/changescore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// importCmd imports changelogs without scoring them.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import changelog entries into the store.",
	Long: `Parse every <base>/<pkg>/<pkg>.changes file and store its entries.

By default an entry already stored for the same author, date and package is
skipped. With --fast, every stored entry is removed first and all entries are
written without checking.

Examples:
  changescore import --base diff
  changescore import -u`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		summary, err := changelog.ImportTree(rootCtx, iocache.Manager.GetStore(), cfg.BaseDir, cfg.DedupMode(), core.ParseOptionsFrom(cfg))
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d entries from %d packages (%d skipped, %d unreadable)\n",
			summary.Imported, summary.Packages, summary.Skipped, len(summary.Failed))
		return nil
	},
}

// scoreCmd scores the entries that have no score yet.
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every unscored entry.",
	Long: `Score every stored entry that has no score yet.

Normal scoring multiplies the package weight (see 'changescore weights') by the
update or feature multiplier. With --fast, keyword rules are applied in bulk and
package weights are ignored.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := core.ScoreAll(rootCtx, iocache.Manager.GetStore(), core.ScoreOptionsFrom(cfg))
		if err != nil {
			return err
		}
		cmd.Printf("Scored %d entries\n", n)
		return nil
	},
}

// resetCmd marks every entry as unscored.
var resetCmd = &cobra.Command{
	Use:     "reset",
	Short:   "Mark every stored entry as unscored.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		n, err := core.ResetAll(rootCtx, iocache.Manager.GetStore())
		if err != nil {
			return err
		}
		cmd.Printf("Reset %d entries\n", n)
		return nil
	},
}

// reportCmd ranks authors without sending anything.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rank authors by total score.",
	Long: `Show the author ranking, or with --digests the digests a run would send.

Authors are labeled Notify when they would get a mail, Review when their total
is above the cutoff but no single package is, and Below otherwise.

Examples:
  changescore report --limit 50
  changescore report --digests --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		start := time.Now()
		store := iocache.Manager.GetStore()
		digests, err := core.BuildDigests(rootCtx, store, core.ReportOptionsFrom(cfg))
		if err != nil {
			return err
		}
		ow := outwriter.NewOutWriter()
		if viper.GetBool("digests") {
			return ow.WriteDigests(digests, cfg)
		}

		totals, err := store.AuthorTotals(rootCtx)
		if err != nil {
			return fmt.Errorf("failed to rank authors: %w", err)
		}
		ranked := schema.EnrichAuthors(totals, cfg.EmailCutoff(), digests)
		if len(ranked) > cfg.ResultLimit {
			ranked = ranked[:cfg.ResultLimit]
		}
		return ow.WriteAuthors(ranked, len(totals), cfg, time.Since(start))
	},
}
