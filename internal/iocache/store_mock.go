package iocache

import (
	"context"
	"time"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetStore implements the StoreManager interface.
func (m *MockStoreManager) GetStore() contract.Store {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.Store)
	return store
}

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.Store = &MockStore{} // Compile-time check

// HasEntry implements the Store interface.
func (m *MockStore) HasEntry(ctx context.Context, key schema.EntryKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// InsertEntries implements the Store interface.
func (m *MockStore) InsertEntries(ctx context.Context, entries []schema.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// ClearEntries implements the Store interface.
func (m *MockStore) ClearEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ResetScores implements the Store interface.
func (m *MockStore) ResetScores(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ListUnscored implements the Store interface.
func (m *MockStore) ListUnscored(ctx context.Context) ([]schema.Entry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]schema.Entry)
	return entries, args.Error(1)
}

// UpdateScores implements the Store interface.
func (m *MockStore) UpdateScores(ctx context.Context, entries []schema.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// ApplyBulkRules implements the Store interface.
func (m *MockStore) ApplyBulkRules(ctx context.Context, rules []schema.BulkRule, fallback int64) (int64, error) {
	args := m.Called(ctx, rules, fallback)
	return args.Get(0).(int64), args.Error(1)
}

// CountEntries implements the Store interface.
func (m *MockStore) CountEntries(ctx context.Context, filter schema.EntryFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

// ListEntries implements the Store interface.
func (m *MockStore) ListEntries(ctx context.Context, filter schema.EntryFilter) ([]schema.Entry, error) {
	args := m.Called(ctx, filter)
	entries, _ := args.Get(0).([]schema.Entry)
	return entries, args.Error(1)
}

// AuthorTotals implements the Store interface.
func (m *MockStore) AuthorTotals(ctx context.Context) ([]schema.AuthorTotal, error) {
	args := m.Called(ctx)
	totals, _ := args.Get(0).([]schema.AuthorTotal)
	return totals, args.Error(1)
}

// PackageTotals implements the Store interface.
func (m *MockStore) PackageTotals(ctx context.Context, author string) ([]schema.PackageTotal, error) {
	args := m.Called(ctx, author)
	totals, _ := args.Get(0).([]schema.PackageTotal)
	return totals, args.Error(1)
}

// GetPackageWeight implements the Store interface.
func (m *MockStore) GetPackageWeight(ctx context.Context, pkg string) (schema.PackageWeight, bool, error) {
	args := m.Called(ctx, pkg)
	return args.Get(0).(schema.PackageWeight), args.Bool(1), args.Error(2)
}

// SetPackageWeight implements the Store interface.
func (m *MockStore) SetPackageWeight(ctx context.Context, weight schema.PackageWeight) error {
	args := m.Called(ctx, weight)
	return args.Error(0)
}

// DeletePackageWeight implements the Store interface.
func (m *MockStore) DeletePackageWeight(ctx context.Context, pkg string) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

// ListPackageWeights implements the Store interface.
func (m *MockStore) ListPackageWeights(ctx context.Context) ([]schema.PackageWeight, error) {
	args := m.Called(ctx)
	weights, _ := args.Get(0).([]schema.PackageWeight)
	return weights, args.Error(1)
}

// BeginRun implements the Store interface.
func (m *MockStore) BeginRun(ctx context.Context, startTime time.Time, configParams map[string]any) (string, error) {
	args := m.Called(ctx, startTime, configParams)
	return args.String(0), args.Error(1)
}

// EndRun implements the Store interface.
func (m *MockStore) EndRun(ctx context.Context, runID string, endTime time.Time, stats schema.RunStats) error {
	args := m.Called(ctx, runID, endTime, stats)
	return args.Error(0)
}

// ListRuns implements the Store interface.
func (m *MockStore) ListRuns(ctx context.Context) ([]schema.RunRecord, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetStatus implements the Store interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
