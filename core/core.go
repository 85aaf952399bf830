// Package core has the changescore pipeline: scoring, digests and their orchestration.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/changescore/core/changelog"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// RunResult summarizes one pipeline run.
type RunResult struct {
	RunID      string               `json:"run_id"`
	Import     schema.ImportSummary `json:"import"`
	Reset      int64                `json:"reset"`
	Scored     int                  `json:"scored"`
	Digests    []schema.Digest      `json:"digests"`
	Dispatched int                  `json:"dispatched"`
	Duration   time.Duration        `json:"duration"`
}

// ScoreOptionsFrom derives the scoring weights from the config.
func ScoreOptionsFrom(cfg *contract.Config) ScoreOptions {
	return ScoreOptions{
		DefaultPoints: cfg.DefaultPoints,
		UpdatePoints:  cfg.UpdatePoints,
		FeaturePoints: cfg.FeaturePoints,
		Fast:          cfg.Fast,
	}
}

// ReportOptionsFrom derives the reporter thresholds from the config.
func ReportOptionsFrom(cfg *contract.Config) ReportOptions {
	return ReportOptions{
		DefaultPoints:    cfg.DefaultPoints,
		EmailThreshold:   cfg.EmailThreshold,
		PackageThreshold: cfg.PackageThreshold,
		MaxPackages:      cfg.MaxPackages,
	}
}

// ParseOptionsFrom derives the parser options from the config.
func ParseOptionsFrom(cfg *contract.Config) changelog.ParseOptions {
	return changelog.ParseOptions{
		SeparatorWidth: cfg.SeparatorWidth,
		FlushTrailing:  cfg.FlushTrailing,
		Aliases:        cfg.DomainAliases,
	}
}

// TemplateFrom derives the mail template from the config.
func TemplateFrom(cfg *contract.Config) DigestTemplate {
	return DigestTemplate{
		Subject: cfg.MailSubject,
		Release: cfg.Release,
		WikiURL: cfg.WikiURL,
	}
}

// RunPipeline imports, resets, scores and reports in that order, as the config asks.
// The run is recorded in the store whether or not it succeeds.
func RunPipeline(ctx context.Context, store contract.Store, notifier contract.Notifier, cfg *contract.Config, w io.Writer) (RunResult, error) {
	start := time.Now()
	var result RunResult

	runID, err := store.BeginRun(ctx, start, cfg.Params())
	if err != nil {
		return result, fmt.Errorf("failed to record run: %w", err)
	}
	result.RunID = runID
	contract.LogInfo("Starting run", "run", runID, "base", cfg.BaseDir, "fast", cfg.Fast)

	err = runStages(ctx, store, notifier, cfg, w, &result)
	result.Duration = time.Since(start)

	stats := schema.RunStats{Imported: result.Import.Imported, Scored: result.Scored, Digests: len(result.Digests)}
	if endErr := store.EndRun(context.WithoutCancel(ctx), runID, time.Now(), stats); endErr != nil {
		contract.LogWarn("Failed to record end of run", endErr, "run", runID)
	}
	if err != nil {
		return result, err
	}
	contract.LogInfo("Finished run", "run", runID, "scored", result.Scored, "digests", len(result.Digests), "duration", result.Duration)
	return result, nil
}

func runStages(ctx context.Context, store contract.Store, notifier contract.Notifier, cfg *contract.Config, w io.Writer, result *RunResult) error {
	var err error
	if cfg.Convert {
		result.Import, err = changelog.ImportTree(ctx, store, cfg.BaseDir, cfg.DedupMode(), ParseOptionsFrom(cfg))
		if err != nil {
			return err
		}
	}
	if cfg.Reset {
		if result.Reset, err = ResetAll(ctx, store); err != nil {
			return err
		}
	}
	if result.Scored, err = ScoreAll(ctx, store, ScoreOptionsFrom(cfg)); err != nil {
		return err
	}
	if result.Digests, err = BuildDigests(ctx, store, ReportOptionsFrom(cfg)); err != nil {
		return err
	}
	result.Dispatched, err = Dispatch(ctx, result.Digests, notifier, TemplateFrom(cfg), cfg.Mail, w)
	return err
}
