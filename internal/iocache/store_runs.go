package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/changescore/schema"
	"github.com/oklog/ulid/v2"
)

// BeginRun records the start of a pipeline run and returns its ULID.
// ULIDs sort by start time, which keeps ListRuns ordering cheap.
func (s *StoreImpl) BeginRun(ctx context.Context, startTime time.Time, configParams map[string]any) (string, error) {
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}
	runID := ulid.MustNew(ulid.Timestamp(startTime), ulid.DefaultEntropy()).String()

	query := s.q(fmt.Sprintf(`INSERT INTO %s (run_id, started_at, config_params) VALUES (?, ?, ?)`, s.runs))
	if _, err := s.db.ExecContext(ctx, query, runID, startTime.Unix(), string(configJSON)); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun stores the completion time and counters of a run.
func (s *StoreImpl) EndRun(ctx context.Context, runID string, endTime time.Time, stats schema.RunStats) error {
	query := s.q(fmt.Sprintf(`UPDATE %s SET finished_at = ?, imported = ?, scored = ?, digests = ? WHERE run_id = ?`, s.runs))
	res, err := s.db.ExecContext(ctx, query, endTime.Unix(), stats.Imported, stats.Scored, stats.Digests, runID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// ListRuns returns every recorded run, newest first.
func (s *StoreImpl) ListRuns(ctx context.Context) ([]schema.RunRecord, error) {
	query := fmt.Sprintf(`SELECT run_id, started_at, finished_at, imported, scored, digests, config_params FROM %s ORDER BY run_id DESC`, s.runs)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []schema.RunRecord
	for rows.Next() {
		var r schema.RunRecord
		var started int64
		var finished sql.NullInt64
		var params sql.NullString
		if err := rows.Scan(&r.RunID, &started, &finished, &r.Imported, &r.Scored, &r.Digests, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartTime = time.Unix(started, 0).UTC()
		if finished.Valid {
			end := time.Unix(finished.Int64, 0).UTC()
			r.EndTime = &end
		}
		r.ConfigParams = params.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStatus returns status information about the store.
func (s *StoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	if s.db == nil {
		return status, nil
	}

	counts := []struct {
		dest  *int
		query string
	}{
		{&status.TotalEntries, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.entries)},
		{&status.Unscored, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE score = 0", s.entries)},
		{&status.Authors, fmt.Sprintf("SELECT COUNT(DISTINCT author) FROM %s", s.entries)},
		{&status.Packages, fmt.Sprintf("SELECT COUNT(DISTINCT pkg) FROM %s", s.entries)},
		{&status.Weights, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.weights)},
		{&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.runs)},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to run %q: %w", c.query, err)
		}
	}
	status.TableSizes[entriesTable] = int64(status.TotalEntries)
	status.TableSizes[weightsTable] = int64(status.Weights)
	status.TableSizes[runsTable] = int64(status.TotalRuns)

	if status.TotalRuns > 0 {
		var last int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(started_at) FROM %s", s.runs)).Scan(&last); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = time.Unix(last, 0).UTC()
	}

	if s.backend == schema.SQLiteBackend {
		var pageCount, pageSize int64
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
			if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
				status.DatabaseSizeKB = pageCount * pageSize / 1024
			}
		}
	}
	return status, nil
}
