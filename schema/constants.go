package schema

import "time"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the report output.
	OutputMode string

	// DatabaseBackend represents the database backend for the entry store.
	DatabaseBackend string

	// DedupMode controls how the parser treats entries already present in the store.
	DedupMode string

	// DigestLabel classifies an author in the ranking table.
	DigestLabel string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All dedup modes supported.
const (
	CheckExisting DedupMode = "check-existing" // default
	Force         DedupMode = "force"
)

// Ranking labels.
const (
	NotifyLabel DigestLabel = "Notify"
	ReviewLabel DigestLabel = "Review"
	BelowLabel  DigestLabel = "Below"
)

// Unscored is the score sentinel for entries the scoring engine has not visited.
const Unscored int64 = 0

// EpochSentinel is the date assigned to entries whose header date cannot be parsed.
var EpochSentinel = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
	YAMLOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidDedupModes lists all valid dedup modes.
var ValidDedupModes = map[DedupMode]struct{}{
	CheckExisting: {},
	Force:         {},
}
