package schema

import "time"

// StoreStatus represents the status of the entry store.
type StoreStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalEntries   int              `json:"total_entries"`
	Unscored       int              `json:"unscored"`
	Authors        int              `json:"authors"`
	Packages       int              `json:"packages"`
	Weights        int              `json:"weights"`
	TotalRuns      int              `json:"total_runs"`
	LastRunTime    time.Time        `json:"last_run_time"`
	TableSizes     map[string]int64 `json:"table_sizes"`
	DatabaseSizeKB int64            `json:"database_size_kb"`
}

// RunRecord represents a row from the runs table.
type RunRecord struct {
	RunID        string     `json:"run_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Imported     int        `json:"imported"`
	Scored       int        `json:"scored"`
	Digests      int        `json:"digests"`
	ConfigParams string     `json:"config_params"`
}

// RunStats carries the counters recorded when a run ends.
type RunStats struct {
	Imported int
	Scored   int
	Digests  int
}

// ImportSummary reports the outcome of importing a changelog tree.
type ImportSummary struct {
	Packages int      `json:"packages"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed,omitempty"`
}
