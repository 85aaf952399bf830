package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/internal/iocache"
	"github.com/huangsam/changescore/internal/notify"
	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(base string) *contract.Config {
	return &contract.Config{
		BaseDir:          base,
		Backend:          schema.SQLiteBackend,
		DBConnect:        ":memory:",
		Convert:          true,
		EmailThreshold:   100,
		PackageThreshold: 100,
		DefaultPoints:    contract.DefaultPoints,
		UpdatePoints:     contract.DefaultUpdatePoints,
		FeaturePoints:    contract.DefaultFeaturePoints,
		MaxPackages:      contract.DefaultMaxPackages,
		SeparatorWidth:   contract.DefaultSeparatorWidth,
		DomainAliases:    schema.DefaultDomainAliases,
		MailSubject:      "Tell us",
		Release:          "openSUSE 13.1",
		WikiURL:          "http://wiki/x",
	}
}

func writeTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	files := map[string]string{
		"yast2": sep + "\n" +
			"Fri Jan  5 10:00:00 UTC 2024 - jdoe@suse.cz\n\n- Update to 4.0\n" + sep + "\n" +
			"Thu Jan  4 10:00:00 UTC 2024 - jdoe@suse.com\n\n- Add a feature\n" + sep + "\n",
		"zypper": sep + "\n" +
			"Wed Jan  3 10:00:00 UTC 2024 - other@suse.com\n\n- Fix typo\n" + sep + "\n",
	}
	for pkg, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Join(base, pkg), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(base, pkg, pkg+".changes"), []byte(content), 0o644))
	}
	return base
}

func TestRunPipeline_Print(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	cfg := testConfig(writeTree(t))

	var buf bytes.Buffer
	result, err := RunPipeline(ctx, store, nil, cfg, &buf)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Import.Packages)
	assert.Equal(t, 3, result.Import.Imported)
	assert.Equal(t, 3, result.Scored)
	require.Len(t, result.Digests, 1)
	assert.Equal(t, "jdoe@suse.com", result.Digests[0].Author)
	assert.Equal(t, int64(15000), result.Digests[0].Total)
	assert.Equal(t, 1, result.Dispatched)
	assert.Contains(t, buf.String(), "We should send mail to jdoe@suse.com")

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, result.RunID, runs[0].RunID)
	assert.Equal(t, 3, runs[0].Imported)
	assert.Equal(t, 1, runs[0].Digests)
	assert.NotNil(t, runs[0].EndTime)

	// A second run imports nothing new and scores nothing.
	cfg.Reset = false
	result, err = RunPipeline(ctx, store, nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Zero(t, result.Import.Imported)
	assert.Equal(t, 3, result.Import.Skipped)
	assert.Zero(t, result.Scored)
	assert.Len(t, result.Digests, 1)
}

func TestRunPipeline_ForceDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	cfg := testConfig(writeTree(t))
	cfg.Fast = true

	_, err := RunPipeline(ctx, store, nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)

	// Force mode clears the store before importing, so counts stay stable.
	_, err = RunPipeline(ctx, store, nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	n, err := store.CountEntries(ctx, schema.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRunPipeline_Mail(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	cfg := testConfig(writeTree(t))
	cfg.Mail = true

	var sent bytes.Buffer
	writer := notify.NewWriter(&sent, "bot@x.org")
	var out bytes.Buffer
	result, err := RunPipeline(ctx, store, writer, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dispatched)
	assert.Equal(t, "Sent mail to jdoe@suse.com\n", out.String())
	assert.Contains(t, sent.String(), "To: jdoe@suse.com\n")
	assert.Contains(t, sent.String(), "Subject: Tell us\n")
}

func TestRunPipeline_ResetRescores(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	cfg := testConfig(writeTree(t))

	_, err := RunPipeline(ctx, store, nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, store.SetPackageWeight(ctx, schema.PackageWeight{Package: "yast2", Points: 10}))
	cfg.Convert = false
	cfg.Reset = true
	result, err := RunPipeline(ctx, store, nil, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Reset)
	assert.Equal(t, 3, result.Scored)
	assert.Empty(t, result.Digests) // 1500 is below every cutoff
}

func TestRunPipeline_RecordsFailedRun(t *testing.T) {
	ctx := context.Background()
	m := &iocache.MockStore{}
	cfg := testConfig(t.TempDir())
	cfg.Convert = false

	m.On("BeginRun", ctx, mock.AnythingOfType("time.Time"), cfg.Params()).Return("01RUN", nil)
	m.On("ListUnscored", ctx).Return(nil, errors.New("disk full"))
	m.On("EndRun", mock.Anything, "01RUN", mock.AnythingOfType("time.Time"), schema.RunStats{}).Return(nil)

	result, err := RunPipeline(ctx, m, nil, cfg, &bytes.Buffer{})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, "01RUN", result.RunID)
	m.AssertExpectations(t)
}

func TestRunPipeline_BeginRunFails(t *testing.T) {
	ctx := context.Background()
	m := &iocache.MockStore{}
	m.On("BeginRun", ctx, mock.Anything, mock.Anything).Return("", errors.New("read-only"))

	_, err := RunPipeline(ctx, m, nil, testConfig(t.TempDir()), &bytes.Buffer{})
	assert.ErrorContains(t, err, "read-only")
	m.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := testConfig("diff")
	cfg.Fast = true
	cfg.FlushTrailing = true

	assert.Equal(t, ScoreOptions{DefaultPoints: 100, UpdatePoints: 50, FeaturePoints: 100, Fast: true}, ScoreOptionsFrom(cfg))
	assert.Equal(t, ReportOptions{DefaultPoints: 100, EmailThreshold: 100, PackageThreshold: 100, MaxPackages: 10}, ReportOptionsFrom(cfg))
	assert.True(t, ParseOptionsFrom(cfg).FlushTrailing)
	assert.Equal(t, DigestTemplate{Subject: "Tell us", Release: "openSUSE 13.1", WikiURL: "http://wiki/x"}, TemplateFrom(cfg))
	assert.Equal(t, 10000.0, ReportOptionsFrom(cfg).EmailCutoff())
}
