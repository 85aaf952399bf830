package changelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// twoBlocks has two separator-closed blocks with non-empty text.
var twoBlocks = strings.Join([]string{
	"Mon Jan  5 10:00:00 2024 - a@suse.cz",
	"- Updated to new version",
	sep67,
	"Tue Jan  6 11:00:00 2024 - a@suse.com",
	"- Added cool feature",
	sep67,
	"",
}, "\n")

func newStore(t *testing.T) *iocache.StoreImpl {
	t.Helper()
	store, err := iocache.NewStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	for pkg, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Join(base, pkg), 0o755))
		if content != "" {
			require.NoError(t, os.WriteFile(ChangelogPath(base, pkg), []byte(content), 0o644))
		}
	}
	return base
}

func countEntries(t *testing.T, store *iocache.StoreImpl) int {
	t.Helper()
	n, err := store.CountEntries(context.Background(), schema.EntryFilter{})
	require.NoError(t, err)
	return n
}

func TestPackageFromPath(t *testing.T) {
	assert.Equal(t, "zypper", PackageFromPath("diff/zypper/zypper.changes"))
	assert.Equal(t, "python-foo.bar", PackageFromPath("/x/python-foo.bar/python-foo.bar.changes"))
	assert.Equal(t, filepath.Join("diff", "yast2", "yast2.changes"), ChangelogPath("diff", "yast2"))
}

func TestImportFile_CheckExistingIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := writeTree(t, map[string]string{"zypper": twoBlocks})
	path := ChangelogPath(base, "zypper")

	imported, skipped, err := ImportFile(ctx, store, path, "zypper", schema.CheckExisting, DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Zero(t, skipped)
	assert.Equal(t, 2, countEntries(t, store))

	imported, skipped, err = ImportFile(ctx, store, path, "zypper", schema.CheckExisting, DefaultParseOptions())
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, 2, countEntries(t, store))
}

func TestImportFile_DuplicateWithinFile(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	block := "Mon Jan  5 10:00:00 2024 - a@suse.com\n- text\n" + sep67 + "\n"
	base := writeTree(t, map[string]string{"p": block + block})

	imported, skipped, err := ImportFile(ctx, store, ChangelogPath(base, "p"), "p", schema.CheckExisting, DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	// Force mode keeps both
	_, err = store.ClearEntries(ctx)
	require.NoError(t, err)
	imported, _, err = ImportFile(ctx, store, ChangelogPath(base, "p"), "p", schema.Force, DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
}

func TestImportFile_Missing(t *testing.T) {
	_, _, err := ImportFile(context.Background(), newStore(t), filepath.Join(t.TempDir(), "nope.changes"), "nope", schema.CheckExisting, DefaultParseOptions())
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestImportFile_StoreFailure(t *testing.T) {
	base := writeTree(t, map[string]string{"zypper": twoBlocks})
	m := &iocache.MockStore{}
	m.On("HasEntry", mock.Anything, mock.Anything).Return(false, errors.New("db gone"))

	_, _, err := ImportFile(context.Background(), m, ChangelogPath(base, "zypper"), "zypper", schema.CheckExisting, DefaultParseOptions())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnreadable)
}

func TestImportTree_ForceModeDuplicatesAfterClear(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := writeTree(t, map[string]string{"zypper": twoBlocks, "yast2": twoBlocks})

	for range 2 {
		summary, err := ImportTree(ctx, store, base, schema.Force, DefaultParseOptions())
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Packages)
		assert.Equal(t, 4, summary.Imported)
		assert.Equal(t, 4, countEntries(t, store))
	}
}

func TestImportTree_CheckExisting(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	base := writeTree(t, map[string]string{
		"zypper": twoBlocks,
		"empty":  "",          // directory without a changelog
		".osc":   twoBlocks,   // hidden directories are ignored
		"yast2":  "garbage\n", // no closed block
	})
	require.NoError(t, os.WriteFile(filepath.Join(base, "README"), []byte("x"), 0o644))

	summary, err := ImportTree(ctx, store, base, schema.CheckExisting, DefaultParseOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Packages)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, []string{"empty"}, summary.Failed)

	summary, err = ImportTree(ctx, store, base, schema.CheckExisting, DefaultParseOptions())
	require.NoError(t, err)
	assert.Zero(t, summary.Imported)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 2, countEntries(t, store))

	entries, err := store.ListEntries(ctx, schema.EntryFilter{Package: "zypper"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a@suse.com", entries[0].Author)
}

func TestImportTree_Errors(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := ImportTree(ctx, store, filepath.Join(t.TempDir(), "missing"), schema.CheckExisting, DefaultParseOptions())
	assert.Error(t, err)

	_, err = ImportTree(ctx, store, t.TempDir(), schema.DedupMode("sometimes"), DefaultParseOptions())
	assert.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	base := writeTree(t, map[string]string{"zypper": twoBlocks})
	_, err = ImportTree(canceled, store, base, schema.CheckExisting, DefaultParseOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
