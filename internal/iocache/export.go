package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/internal/parquet"
	"github.com/huangsam/changescore/schema"
)

// ExportStore writes every table of the store to Parquet files prefixed by outputFile.
func ExportStore(ctx context.Context, w io.Writer, store contract.Store, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalEntries == 0 && status.TotalRuns == 0 {
		return errors.New("no changescore data found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)

	entries, err := store.ListEntries(ctx, schema.EntryFilter{})
	if err != nil {
		return fmt.Errorf("failed to retrieve entries: %w", err)
	}
	entriesFile := outputFile + ".entries.parquet"
	if err := parquet.WriteEntriesParquet(parquet.ConvertEntries(entries), entriesFile); err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d entries to: %s\n", len(entries), entriesFile)

	weights, err := store.ListPackageWeights(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve package weights: %w", err)
	}
	weightsFile := outputFile + ".package_weights.parquet"
	if err := parquet.WritePackageWeightsParquet(parquet.ConvertPackageWeights(weights), weightsFile); err != nil {
		return fmt.Errorf("failed to write package weights: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d package weights to: %s\n", len(weights), weightsFile)

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRuns(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)
	return nil
}
