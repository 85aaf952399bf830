// Package parquet exports changescore data to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/changescore/schema"
	"github.com/parquet-go/parquet-go"
)

// Entry maps to the changescore_entries table.
type Entry struct {
	ID        int64     `parquet:"id,snappy"`
	Author    string    `parquet:"author,snappy,dict"`
	ChangedAt time.Time `parquet:"changed_at,snappy"`
	Package   string    `parquet:"pkg,snappy,dict"`
	Body      string    `parquet:"body,snappy"`
	Score     int64     `parquet:"score,snappy"`
}

// PackageWeight maps to the changescore_package_weights table.
type PackageWeight struct {
	Package string `parquet:"pkg,snappy"`
	Points  int64  `parquet:"points,snappy"`
}

// Run maps to the changescore_runs table.
type Run struct {
	RunID      string     `parquet:"run_id,snappy"`
	StartTime  time.Time  `parquet:"start_time,snappy"`
	EndTime    *time.Time `parquet:"end_time,optional,snappy"`
	Imported   int32      `parquet:"imported,snappy"`
	Scored     int32      `parquet:"scored,snappy"`
	Digests    int32      `parquet:"digests,snappy"`
	ConfigJSON *string    `parquet:"config_params,optional,snappy"`
}

// writeParquet writes rows to outputPath with a schema inferred from T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteEntriesParquet writes entries to a Parquet file.
func WriteEntriesParquet(data []Entry, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePackageWeightsParquet writes package weights to a Parquet file.
func WritePackageWeightsParquet(data []PackageWeight, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertEntries converts schema entries for Parquet export.
func ConvertEntries(entries []schema.Entry) []Entry {
	result := make([]Entry, len(entries))
	for i, e := range entries {
		result[i] = Entry{
			ID:        e.ID,
			Author:    e.Author,
			ChangedAt: e.Date,
			Package:   e.Package,
			Body:      e.Text,
			Score:     e.Score,
		}
	}
	return result
}

// ConvertPackageWeights converts schema weights for Parquet export.
func ConvertPackageWeights(weights []schema.PackageWeight) []PackageWeight {
	result := make([]PackageWeight, len(weights))
	for i, w := range weights {
		result[i] = PackageWeight{Package: w.Package, Points: w.Points}
	}
	return result
}

// ConvertRuns converts run records for Parquet export.
// Empty config params become null.
func ConvertRuns(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		run := Run{
			RunID:     r.RunID,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
			Imported:  int32(r.Imported),
			Scored:    int32(r.Scored),
			Digests:   int32(r.Digests),
		}
		if r.ConfigParams != "" {
			params := r.ConfigParams
			run.ConfigJSON = &params
		}
		result[i] = run
	}
	return result
}
