// Package schema has models and constants shared by every stage of changescore.
package schema

import "time"

// Entry is a single changelog block attributed to one author.
type Entry struct {
	ID      int64     `json:"id" yaml:"id"`
	Author  string    `json:"author" yaml:"author"`   // Normalized email-like identity
	Date    time.Time `json:"date" yaml:"date"`       // UTC, EpochSentinel when unparsable
	Package string    `json:"package" yaml:"package"` // Derived from the changelog file name
	Text    string    `json:"text" yaml:"text"`       // Trimmed body of the block
	Score   int64     `json:"score" yaml:"score"`     // Unscored until the scoring engine visits it
}

// Key returns the dedup key of the entry.
func (e Entry) Key() EntryKey {
	return EntryKey{Author: e.Author, Date: e.Date, Package: e.Package}
}

// EntryKey identifies an entry for deduplication.
type EntryKey struct {
	Author  string
	Date    time.Time
	Package string
}

// PackageWeight is the base number of points awarded to any change of a package.
type PackageWeight struct {
	Package string `json:"package" yaml:"package"`
	Points  int64  `json:"points" yaml:"points"`
}

// EntryFilter is a typed predicate over stored entries.
// Zero-valued fields do not constrain the match.
type EntryFilter struct {
	Author       string
	Package      string
	OnlyUnscored bool
}

// BulkRule assigns Points to every unscored entry whose text contains any of Keywords.
// Keywords are matched case-insensitively.
type BulkRule struct {
	Keywords []string
	Points   int64
}

// AuthorTotal is the sum of scores of one author.
type AuthorTotal struct {
	Author string `json:"author" yaml:"author"`
	Points int64  `json:"points" yaml:"points"`
}

// PackageTotal is the sum of scores of one author within one package.
type PackageTotal struct {
	Package string `json:"package" yaml:"package"`
	Points  int64  `json:"points" yaml:"points"`
}

// Digest is the per-author summary handed to the notifier.
type Digest struct {
	Author     string         `json:"author" yaml:"author"`
	Total      int64          `json:"total" yaml:"total"`
	Packages   []PackageTotal `json:"packages" yaml:"packages"`
	Others     bool           `json:"others" yaml:"others"`         // Some considered packages were left out
	Considered int            `json:"considered" yaml:"considered"` // Packages walked while building the list
}
