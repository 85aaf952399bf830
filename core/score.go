package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// Keywords that raise the score of an entry. Matching is case-insensitive.
var (
	updateKeywords  = []string{"update", "version"}
	featureKeywords = []string{"feature"}
)

// ScoreOptions holds the weights of the scoring engine.
// UpdatePoints and FeaturePoints multiply the base weight of an entry.
type ScoreOptions struct {
	DefaultPoints int64
	UpdatePoints  int64
	FeaturePoints int64
	Fast          bool // Bulk keyword rules that ignore package weights
}

// DefaultScoreOptions returns the stock weights.
func DefaultScoreOptions() ScoreOptions {
	return ScoreOptions{
		DefaultPoints: contract.DefaultPoints,
		UpdatePoints:  contract.DefaultUpdatePoints,
		FeaturePoints: contract.DefaultFeaturePoints,
	}
}

func (o ScoreOptions) validate() error {
	if o.DefaultPoints <= 0 {
		return fmt.Errorf("default points must be greater than 0 (received %d)", o.DefaultPoints)
	}
	if o.UpdatePoints < 0 || o.FeaturePoints < 0 {
		return fmt.Errorf("multipliers cannot be negative (received %d, %d)", o.UpdatePoints, o.FeaturePoints)
	}
	return nil
}

// bulkRules are the fast-mode rules in priority order. Feature beats update.
func (o ScoreOptions) bulkRules() []schema.BulkRule {
	return []schema.BulkRule{
		{Keywords: featureKeywords, Points: o.FeaturePoints * o.DefaultPoints},
		{Keywords: updateKeywords, Points: o.UpdatePoints * o.DefaultPoints},
	}
}

// ScoreEntry computes the score of one entry from its package weight.
// Update and version changes take precedence over features.
func ScoreEntry(text string, base int64, opts ScoreOptions) int64 {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, updateKeywords):
		return base * opts.UpdatePoints
	case containsAny(lower, featureKeywords):
		return base * opts.FeaturePoints
	default:
		return base
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ResetAll marks every stored entry as unscored.
func ResetAll(ctx context.Context, store contract.EntryStore) (int64, error) {
	n, err := store.ResetScores(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reset scores: %w", err)
	}
	contract.LogInfo("Reset scores", "entries", n)
	return n, nil
}

// ScoreAll scores every unscored entry and returns how many were scored.
// Entries that already carry a score are never touched.
func ScoreAll(ctx context.Context, store contract.ScoringStore, opts ScoreOptions) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}

	scored := 0
	if opts.Fast {
		n, err := store.ApplyBulkRules(ctx, opts.bulkRules(), opts.DefaultPoints)
		if err != nil {
			return 0, fmt.Errorf("failed to apply bulk rules: %w", err)
		}
		scored += int(n)
		contract.LogInfo("Applied bulk rules", "entries", n)
	}

	entries, err := store.ListUnscored(ctx)
	if err != nil {
		return scored, fmt.Errorf("failed to list unscored entries: %w", err)
	}

	// Entries arrive ordered by package, so each weight is looked up once.
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && entries[end].Package == entries[start].Package {
			end++
		}
		n, err := scorePackage(ctx, store, entries[start:end], opts)
		if err != nil {
			return scored, err
		}
		scored += n
		start = end
	}

	contract.LogInfo("Scored entries", "entries", scored)
	return scored, nil
}

// scorePackage scores the unscored entries of a single package.
func scorePackage(ctx context.Context, store contract.ScoringStore, group []schema.Entry, opts ScoreOptions) (int, error) {
	pkg := group[0].Package
	base := opts.DefaultPoints
	weight, ok, err := store.GetPackageWeight(ctx, pkg)
	if err != nil {
		return 0, fmt.Errorf("failed to look up weight of %s: %w", pkg, err)
	}
	if ok {
		base = weight.Points
	}
	contract.LogDebug("Updating scores of package", "pkg", pkg, "weight", base, "entries", len(group))

	updated := make([]schema.Entry, 0, len(group))
	for _, e := range group {
		e.Score = ScoreEntry(e.Text, base, opts)
		if e.Score == schema.Unscored {
			continue // zero weight; stays unscored
		}
		updated = append(updated, e)
	}
	if err := store.UpdateScores(ctx, updated); err != nil {
		return 0, fmt.Errorf("failed to store scores of %s: %w", pkg, err)
	}
	return len(updated), nil
}
