package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// scheduleCmd keeps running the pipeline on a cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline periodically on a cron schedule.",
	Long: `Keep the process alive and run the pipeline on a cron schedule.

Takes the same flags as 'run'. The schedule uses the standard five cron fields
(minute hour day-of-month month day-of-week). A run that fails is logged and the
next one still happens. Stop with Ctrl-C.

Examples:
  # Every Monday at 06:00, import and mail
  changescore schedule -c -m --schedule "0 6 * * 1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		spec, err := cron.ParseStandard(cfg.Schedule)
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
		}

		l := cronLogger{}
		c := cron.New(cron.WithLogger(l), cron.WithChain(jobWrappers(l)...))
		c.Schedule(spec, cron.FuncJob(func() {
			if err := executeRun(rootCtx, cmd.OutOrStdout()); err != nil {
				contract.LogWarn("Scheduled run failed", err)
			}
		}))
		c.Start()
		contract.LogInfo("Scheduler started", "schedule", cfg.Schedule, "next", spec.Next(time.Now()))

		<-rootCtx.Done()
		<-c.Stop().Done()
		contract.LogInfo("Scheduler stopped")
		return nil
	},
}

// jobWrappers keeps a panicking run from killing the scheduler and skips a
// tick while the previous run still holds the store.
func jobWrappers(l cron.Logger) []cron.JobWrapper {
	return []cron.JobWrapper{cron.Recover(l), cron.SkipIfStillRunning(l)}
}

// cronLogger forwards cron's own logging to the process logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	contract.LogDebug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	contract.LogWarn(msg, err, keysAndValues...)
}
