// Package contract provides interfaces and shared utilities for the changescore CLI's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/changescore/schema"
)

// EntryStore defines the interface for changelog entry storage.
// This allows mocking the store for testing.
type EntryStore interface {
	HasEntry(ctx context.Context, key schema.EntryKey) (bool, error)
	InsertEntries(ctx context.Context, entries []schema.Entry) error
	ClearEntries(ctx context.Context) (int64, error)
	ResetScores(ctx context.Context) (int64, error)
	ListUnscored(ctx context.Context) ([]schema.Entry, error)
	UpdateScores(ctx context.Context, entries []schema.Entry) error
	ApplyBulkRules(ctx context.Context, rules []schema.BulkRule, fallback int64) (int64, error)
	CountEntries(ctx context.Context, filter schema.EntryFilter) (int, error)
	ListEntries(ctx context.Context, filter schema.EntryFilter) ([]schema.Entry, error)
	AuthorTotals(ctx context.Context) ([]schema.AuthorTotal, error)
	PackageTotals(ctx context.Context, author string) ([]schema.PackageTotal, error)
}

// WeightStore defines the interface for per-package base weights.
type WeightStore interface {
	GetPackageWeight(ctx context.Context, pkg string) (schema.PackageWeight, bool, error)
	SetPackageWeight(ctx context.Context, weight schema.PackageWeight) error
	DeletePackageWeight(ctx context.Context, pkg string) error
	ListPackageWeights(ctx context.Context) ([]schema.PackageWeight, error)
}

// RunStore defines the interface for pipeline run tracking.
type RunStore interface {
	BeginRun(ctx context.Context, startTime time.Time, configParams map[string]any) (string, error)
	EndRun(ctx context.Context, runID string, endTime time.Time, stats schema.RunStats) error
	ListRuns(ctx context.Context) ([]schema.RunRecord, error)
}

// ScoringStore is the part of the store the scoring engine needs.
type ScoringStore interface {
	EntryStore
	WeightStore
}

// Store is the full persistence surface used by a pipeline run.
type Store interface {
	EntryStore
	WeightStore
	RunStore
	GetStatus(ctx context.Context) (schema.StoreStatus, error)
	Close() error
}

// StoreManager defines the interface for accessing the process-wide store.
type StoreManager interface {
	GetStore() Store
}

// Notifier delivers a rendered digest to its recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
