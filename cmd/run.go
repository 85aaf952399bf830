package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/changescore/core"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/notify"
	"github.com/spf13/cobra"
)

// runCmd executes the whole pipeline once.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Import, score and report in a single pass.",
	Long: `Run the whole changescore pipeline once.

Stages, in order:
- Import every <base>/<pkg>/<pkg>.changes file (with --convert)
- Reset every stored score (with --reset)
- Score all unscored entries
- Sum scores per author and build a digest for each busy author
- Print the digests for review, or mail them (with --mail)

Examples:
  # Import new changelog entries and print who should be asked
  changescore run -c

  # Re-score everything with the bulk heuristics and mail the authors
  changescore run -c -r -u -m

  # Report with a lower author cutoff
  changescore run -e 100`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeRun(rootCtx, cmd.OutOrStdout())
	},
}

// newNotifier returns the sendmail notifier when the run mails its digests.
func newNotifier(c *contract.Config) contract.Notifier {
	if !c.Mail {
		return nil
	}
	return notify.NewSendmail(c.SendmailPath, c.MailFrom)
}

// executeRun runs the pipeline against the process-wide store.
func executeRun(ctx context.Context, w io.Writer) error {
	store := iocache.Manager.GetStore()
	if store == nil {
		return fmt.Errorf("store is not initialized")
	}
	result, err := core.RunPipeline(ctx, store, newNotifier(cfg), cfg, w)
	if err != nil {
		return err
	}
	if len(result.Import.Failed) > 0 {
		contract.LogWarn("Some changelogs could not be read", fmt.Errorf("%d failed", len(result.Import.Failed)),
			"packages", strings.Join(result.Import.Failed, ","))
	}
	return nil
}
