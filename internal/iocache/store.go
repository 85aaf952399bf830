package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// Table names for the changescore store.
const (
	entriesTable = "changescore_entries"
	weightsTable = "changescore_package_weights"
	runsTable    = "changescore_runs"
)

// entryColumns is the column list shared by every entry SELECT.
const entryColumns = "id, author, changed_at, pkg, body, score"

// StoreImpl implements contract.Store on top of database/sql.
type StoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	connStr    string
	entries    string // Quoted table names
	weights    string
	runs       string
	driverName string
}

var _ contract.Store = &StoreImpl{} // Compile-time check

// NewStore opens the store for the backend and creates its tables when missing.
func NewStore(backend schema.DatabaseBackend, connStr string) (*StoreImpl, error) {
	for _, name := range []string{entriesTable, weightsTable, runsTable} {
		if err := validateTableName(name); err != nil {
			return nil, err
		}
	}
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create store tables: %w", err)
	}
	return &StoreImpl{
		db:         db,
		backend:    backend,
		connStr:    connStr,
		entries:    quoteTableName(entriesTable, backend),
		weights:    quoteTableName(weightsTable, backend),
		runs:       quoteTableName(runsTable, backend),
		driverName: driver,
	}, nil
}

// createTables runs every CREATE statement for the backend in order.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, stmt := range createStatements(backend) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// createStatements returns the schema for the backend.
// MySQL has no CREATE INDEX IF NOT EXISTS, so its indexes live inside the table definition.
func createStatements(backend schema.DatabaseBackend) []string {
	entries := quoteTableName(entriesTable, backend)
	weights := quoteTableName(weightsTable, backend)
	runs := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				author VARCHAR(255) NOT NULL,
				changed_at BIGINT NOT NULL,
				pkg VARCHAR(255) NOT NULL,
				body MEDIUMTEXT NOT NULL,
				score BIGINT NOT NULL DEFAULT 0,
				INDEX idx_changescore_entries_key (author, changed_at, pkg),
				INDEX idx_changescore_entries_pkg (pkg),
				INDEX idx_changescore_entries_score (score)
			)`, entries),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				pkg VARCHAR(255) NOT NULL PRIMARY KEY,
				points BIGINT NOT NULL
			)`, weights),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(26) NOT NULL PRIMARY KEY,
				started_at BIGINT NOT NULL,
				finished_at BIGINT NULL,
				imported INT NOT NULL DEFAULT 0,
				scored INT NOT NULL DEFAULT 0,
				digests INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				author TEXT NOT NULL,
				changed_at BIGINT NOT NULL,
				pkg TEXT NOT NULL,
				body TEXT NOT NULL,
				score BIGINT NOT NULL DEFAULT 0
			)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_key ON %s (author, changed_at, pkg)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_pkg ON %s (pkg)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_score ON %s (score)`, entries),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				pkg TEXT NOT NULL PRIMARY KEY,
				points BIGINT NOT NULL
			)`, weights),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(26) NOT NULL PRIMARY KEY,
				started_at BIGINT NOT NULL,
				finished_at BIGINT,
				imported INT NOT NULL DEFAULT 0,
				scored INT NOT NULL DEFAULT 0,
				digests INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				author TEXT NOT NULL,
				changed_at INTEGER NOT NULL,
				pkg TEXT NOT NULL,
				body TEXT NOT NULL,
				score INTEGER NOT NULL DEFAULT 0
			)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_key ON %s (author, changed_at, pkg)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_pkg ON %s (pkg)`, entries),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_changescore_entries_score ON %s (score)`, entries),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				pkg TEXT NOT NULL PRIMARY KEY,
				points INTEGER NOT NULL
			)`, weights),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL PRIMARY KEY,
				started_at INTEGER NOT NULL,
				finished_at INTEGER,
				imported INTEGER NOT NULL DEFAULT 0,
				scored INTEGER NOT NULL DEFAULT 0,
				digests INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			)`, runs),
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

// q rebinds a query written with '?' placeholders for the store's backend.
func (s *StoreImpl) q(query string) string {
	return rebind(query, s.backend)
}

// Backend returns the backend the store was opened with.
func (s *StoreImpl) Backend() schema.DatabaseBackend {
	return s.backend
}

// HasEntry reports whether an entry with the same author, date and package exists.
func (s *StoreImpl) HasEntry(ctx context.Context, key schema.EntryKey) (bool, error) {
	query := s.q(fmt.Sprintf(`SELECT 1 FROM %s WHERE author = ? AND changed_at = ? AND pkg = ? LIMIT 1`, s.entries))
	var one int
	err := s.db.QueryRowContext(ctx, query, key.Author, key.Date.Unix(), key.Package).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up entry: %w", err)
	}
	return true, nil
}

// InsertEntries stores entries in a single transaction.
func (s *StoreImpl) InsertEntries(ctx context.Context, entries []schema.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.q(fmt.Sprintf(
		`INSERT INTO %s (author, changed_at, pkg, body, score) VALUES (?, ?, ?, ?, ?)`, s.entries)))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Author, e.Date.Unix(), e.Package, e.Text, e.Score); err != nil {
			return fmt.Errorf("failed to insert entry for %s in %s: %w", e.Author, e.Package, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// ClearEntries deletes every stored entry.
func (s *StoreImpl) ClearEntries(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.entries))
	if err != nil {
		return 0, fmt.Errorf("failed to clear entries: %w", err)
	}
	return res.RowsAffected()
}

// ResetScores marks every entry as unscored.
func (s *StoreImpl) ResetScores(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf(`UPDATE %s SET score = ? WHERE score <> ?`, s.entries)),
		schema.Unscored, schema.Unscored)
	if err != nil {
		return 0, fmt.Errorf("failed to reset scores: %w", err)
	}
	return res.RowsAffected()
}

// ListUnscored returns every unscored entry grouped by package.
func (s *StoreImpl) ListUnscored(ctx context.Context) ([]schema.Entry, error) {
	return s.ListEntries(ctx, schema.EntryFilter{OnlyUnscored: true})
}

// UpdateScores writes the Score of each entry, keyed by ID, in one transaction.
func (s *StoreImpl) UpdateScores(ctx context.Context, entries []schema.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.q(fmt.Sprintf(`UPDATE %s SET score = ? WHERE id = ?`, s.entries)))
	if err != nil {
		return fmt.Errorf("failed to prepare score update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Score, e.ID); err != nil {
			return fmt.Errorf("failed to update score of entry %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}

// ApplyBulkRules scores every unscored entry in one statement. Rules are tried in order,
// the first one with a keyword contained in the text wins, and fallback applies otherwise.
func (s *StoreImpl) ApplyBulkRules(ctx context.Context, rules []schema.BulkRule, fallback int64) (int64, error) {
	var b strings.Builder
	var args []any

	fmt.Fprintf(&b, "UPDATE %s SET score = CASE", s.entries)
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			continue
		}
		conds := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw == "" || strings.ContainsAny(kw, `%_\`) {
				return 0, fmt.Errorf("invalid bulk keyword %q", kw)
			}
			conds = append(conds, "LOWER(body) LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
		fmt.Fprintf(&b, " WHEN (%s) THEN %s", strings.Join(conds, " OR "), castInt("?", s.backend))
		args = append(args, rule.Points)
	}
	fmt.Fprintf(&b, " ELSE %s END WHERE score = ?", castInt("?", s.backend))
	args = append(args, fallback, schema.Unscored)

	res, err := s.db.ExecContext(ctx, s.q(b.String()), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to apply bulk rules: %w", err)
	}
	return res.RowsAffected()
}

// whereClause turns a typed filter into a WHERE clause and its arguments.
func whereClause(filter schema.EntryFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Author != "" {
		conds = append(conds, "author = ?")
		args = append(args, filter.Author)
	}
	if filter.Package != "" {
		conds = append(conds, "pkg = ?")
		args = append(args, filter.Package)
	}
	if filter.OnlyUnscored {
		conds = append(conds, "score = ?")
		args = append(args, schema.Unscored)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CountEntries counts the entries matching the filter.
func (s *StoreImpl) CountEntries(ctx context.Context, filter schema.EntryFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, s.q(fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, s.entries, where)), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// ListEntries returns the entries matching the filter ordered by package, then insertion.
func (s *StoreImpl) ListEntries(ctx context.Context, filter schema.EntryFilter) ([]schema.Entry, error) {
	where, args := whereClause(filter)
	query := s.q(fmt.Sprintf(`SELECT %s FROM %s%s ORDER BY pkg ASC, id ASC`, entryColumns, s.entries, where))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []schema.Entry
	for rows.Next() {
		var e schema.Entry
		var changedAt int64
		if err := rows.Scan(&e.ID, &e.Author, &changedAt, &e.Package, &e.Text, &e.Score); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Date = time.Unix(changedAt, 0).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AuthorTotals sums scores per author, highest first.
func (s *StoreImpl) AuthorTotals(ctx context.Context) ([]schema.AuthorTotal, error) {
	query := fmt.Sprintf(`SELECT author, %s AS total FROM %s GROUP BY author ORDER BY total DESC, author ASC`,
		castInt("SUM(score)", s.backend), s.entries)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sum author scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []schema.AuthorTotal
	for rows.Next() {
		var t schema.AuthorTotal
		if err := rows.Scan(&t.Author, &t.Points); err != nil {
			return nil, fmt.Errorf("failed to scan author total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// PackageTotals sums the scores of one author per package, highest first.
func (s *StoreImpl) PackageTotals(ctx context.Context, author string) ([]schema.PackageTotal, error) {
	query := s.q(fmt.Sprintf(`SELECT pkg, %s AS total FROM %s WHERE author = ? GROUP BY pkg ORDER BY total DESC, pkg ASC`,
		castInt("SUM(score)", s.backend), s.entries))
	rows, err := s.db.QueryContext(ctx, query, author)
	if err != nil {
		return nil, fmt.Errorf("failed to sum package scores for %s: %w", author, err)
	}
	defer func() { _ = rows.Close() }()

	var totals []schema.PackageTotal
	for rows.Next() {
		var t schema.PackageTotal
		if err := rows.Scan(&t.Package, &t.Points); err != nil {
			return nil, fmt.Errorf("failed to scan package total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GetPackageWeight returns the configured weight of a package, if any.
func (s *StoreImpl) GetPackageWeight(ctx context.Context, pkg string) (schema.PackageWeight, bool, error) {
	w := schema.PackageWeight{Package: pkg}
	err := s.db.QueryRowContext(ctx, s.q(fmt.Sprintf(`SELECT points FROM %s WHERE pkg = ?`, s.weights)), pkg).Scan(&w.Points)
	if err == sql.ErrNoRows {
		return w, false, nil
	}
	if err != nil {
		return w, false, fmt.Errorf("failed to look up weight of %s: %w", pkg, err)
	}
	return w, true, nil
}

// SetPackageWeight inserts or replaces the weight of a package.
func (s *StoreImpl) SetPackageWeight(ctx context.Context, weight schema.PackageWeight) error {
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (pkg, points) VALUES (?, ?) AS new ON DUPLICATE KEY UPDATE points = new.points`, s.weights)
	default: // SQLite and PostgreSQL
		query = fmt.Sprintf(`INSERT INTO %s (pkg, points) VALUES (?, ?) ON CONFLICT (pkg) DO UPDATE SET points = excluded.points`, s.weights)
	}
	if _, err := s.db.ExecContext(ctx, s.q(query), weight.Package, weight.Points); err != nil {
		return fmt.Errorf("failed to set weight of %s: %w", weight.Package, err)
	}
	return nil
}

// DeletePackageWeight removes the weight of a package. Missing packages are not an error.
func (s *StoreImpl) DeletePackageWeight(ctx context.Context, pkg string) error {
	if _, err := s.db.ExecContext(ctx, s.q(fmt.Sprintf(`DELETE FROM %s WHERE pkg = ?`, s.weights)), pkg); err != nil {
		return fmt.Errorf("failed to delete weight of %s: %w", pkg, err)
	}
	return nil
}

// ListPackageWeights returns every configured weight ordered by package.
func (s *StoreImpl) ListPackageWeights(ctx context.Context) ([]schema.PackageWeight, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT pkg, points FROM %s ORDER BY pkg ASC`, s.weights))
	if err != nil {
		return nil, fmt.Errorf("failed to list weights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var weights []schema.PackageWeight
	for rows.Next() {
		var w schema.PackageWeight
		if err := rows.Scan(&w.Package, &w.Points); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// Close closes the underlying connection.
func (s *StoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
