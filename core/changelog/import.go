package changelog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// changesExt is the suffix of every changelog file.
const changesExt = ".changes"

// ErrUnreadable marks a changelog that could not be opened or read.
// ImportTree skips such packages instead of aborting.
var ErrUnreadable = errors.New("unreadable changelog")

// PackageFromPath derives the package identifier from a changelog path.
func PackageFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), changesExt)
}

// ChangelogPath returns <base>/<pkg>/<pkg>.changes.
func ChangelogPath(base, pkg string) string {
	return filepath.Join(base, pkg, pkg+changesExt)
}

// entryKey is EntryKey with the date reduced to the precision the store keeps.
type entryKey struct {
	author string
	unix   int64
	pkg    string
}

// ImportFile parses one changelog and stores its entries.
// In CheckExisting mode, entries whose key is already stored (or repeated
// within the file) are skipped. In Force mode every entry is written.
func ImportFile(ctx context.Context, store contract.EntryStore, path, pkg string, mode schema.DedupMode, opts ParseOptions) (imported, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer func() { _ = f.Close() }()

	candidates, err := Parse(f, pkg, opts)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	accepted := candidates
	if mode != schema.Force {
		accepted = make([]schema.Entry, 0, len(candidates))
		seen := make(map[entryKey]struct{}, len(candidates))
		for _, e := range candidates {
			k := entryKey{author: e.Author, unix: e.Date.Unix(), pkg: e.Package}
			if _, dup := seen[k]; dup {
				skipped++
				continue
			}
			seen[k] = struct{}{}

			exists, err := store.HasEntry(ctx, e.Key())
			if err != nil {
				return 0, skipped, err
			}
			if exists {
				skipped++
				continue
			}
			accepted = append(accepted, e)
		}
	}

	if err := store.InsertEntries(ctx, accepted); err != nil {
		return 0, skipped, err
	}
	return len(accepted), skipped, nil
}

// ImportTree imports <base>/<pkg>/<pkg>.changes for every package directory
// under base, in ascending name order. Force mode clears every stored entry first.
// A package whose changelog cannot be read is logged and skipped; store
// failures abort the import.
func ImportTree(ctx context.Context, store contract.EntryStore, base string, mode schema.DedupMode, opts ParseOptions) (schema.ImportSummary, error) {
	var summary schema.ImportSummary
	if _, ok := schema.ValidDedupModes[mode]; !ok {
		return summary, fmt.Errorf("invalid dedup mode '%s'. must be check-existing, force", mode)
	}

	dirs, err := os.ReadDir(base) // sorted by name
	if err != nil {
		return summary, fmt.Errorf("failed to read changelog base %s: %w", base, err)
	}

	if mode == schema.Force {
		cleared, err := store.ClearEntries(ctx)
		if err != nil {
			return summary, err
		}
		contract.LogInfo("Cleared stored entries", "count", cleared)
	}

	contract.LogInfo("Importing changes", "base", base, "mode", mode)
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || !d.IsDir() {
			continue
		}
		summary.Packages++

		contract.LogDebug("Importing changes", "pkg", name)
		imported, skipped, err := ImportFile(ctx, store, ChangelogPath(base, name), name, mode, opts)
		summary.Imported += imported
		summary.Skipped += skipped
		if errors.Is(err, ErrUnreadable) {
			contract.LogWarn("Skipping package", err, "pkg", name)
			summary.Failed = append(summary.Failed, name)
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("failed to import %s: %w", name, err)
		}
	}

	contract.LogInfo("Imported changes", "packages", summary.Packages, "imported", summary.Imported,
		"skipped", summary.Skipped, "failed", len(summary.Failed))
	return summary, nil
}
