package changelog

import (
	"strings"
	"testing"
	"time"

	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sep67 = strings.Repeat("-", 67)

func parseString(t *testing.T, content string, opts ParseOptions) []schema.Entry {
	t.Helper()
	entries, err := Parse(strings.NewReader(content), "zypper", opts)
	require.NoError(t, err)
	return entries
}

func TestParse_TwoTerminatedBlocks(t *testing.T) {
	content := strings.Join([]string{
		"Mon Jan  5 10:00:00 2024 - a@suse.cz",
		"",
		"- Updated to new version",
		"",
		sep67,
		"Tue Jan  6 11:00:00 2024 - a@suse.com",
		"",
		"- Added cool feature",
		sep67,
		"",
	}, "\n")

	entries := parseString(t, content, DefaultParseOptions())
	require.Len(t, entries, 2)

	assert.Equal(t, "a@suse.com", entries[0].Author)
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "zypper", entries[0].Package)
	assert.Equal(t, "- Updated to new version", entries[0].Text)
	assert.Equal(t, schema.Unscored, entries[0].Score)

	assert.Equal(t, "a@suse.com", entries[1].Author)
	assert.Equal(t, time.Date(2024, 1, 6, 11, 0, 0, 0, time.UTC), entries[1].Date)
	assert.Equal(t, "- Added cool feature", entries[1].Text)
}

func TestParse_TrailingBlock(t *testing.T) {
	// Real changelogs open every block with a separator, so the oldest block is unterminated.
	content := strings.Join([]string{
		sep67,
		"Tue Jan  6 11:00:00 UTC 2024 - b@suse.de",
		"",
		"- second",
		"",
		sep67,
		"Mon Jan  5 10:00:00 UTC 2024 - b@suse.de",
		"",
		"- first",
	}, "\n")

	t.Run("dropped by default", func(t *testing.T) {
		entries := parseString(t, content, DefaultParseOptions())
		require.Len(t, entries, 1)
		assert.Equal(t, "- second", entries[0].Text)
		assert.Equal(t, "b@suse.com", entries[0].Author)
	})

	t.Run("flushed on request", func(t *testing.T) {
		opts := DefaultParseOptions()
		opts.FlushTrailing = true
		entries := parseString(t, content, opts)
		require.Len(t, entries, 2)
		assert.Equal(t, "- first", entries[1].Text)
		assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), entries[1].Date)
	})
}

func TestParse_SecondHeaderIsBody(t *testing.T) {
	content := strings.Join([]string{
		"Mon Jan  5 10:00:00 2024 - a@suse.com",
		"- one",
		"Tue Jan  6 11:00:00 2024 - other@suse.com",
		"- two",
		sep67,
	}, "\n")

	entries := parseString(t, content, DefaultParseOptions())
	require.Len(t, entries, 1)
	assert.Equal(t, "a@suse.com", entries[0].Author)
	assert.Equal(t, "- one\nTue Jan  6 11:00:00 2024 - other@suse.com\n- two", entries[0].Text)
}

func TestParse_UnparsableDateFallsBack(t *testing.T) {
	for _, header := range []string{
		"Tue Feb 30 10:00:00 2024 - a@suse.com",
		"Mon Jan 45 10:00:00 2024 - a@suse.com",
		"Mon Foo  5 10:00:00 2024 - a@suse.com",
	} {
		t.Run(header, func(t *testing.T) {
			entries := parseString(t, header+"\n- text\n"+sep67+"\n", DefaultParseOptions())
			require.Len(t, entries, 1)
			assert.Equal(t, "a@suse.com", entries[0].Author)
			assert.Equal(t, schema.EpochSentinel, entries[0].Date)
		})
	}
}

func TestParse_MalformedBytes(t *testing.T) {
	content := "Mon Jan  5 10:00:00 2024 - a@suse.com\n- fix caf\xe9 \xff\xfe crash\n" + sep67 + "\n"
	entries := parseString(t, content, DefaultParseOptions())
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Text, "�")
	assert.True(t, strings.HasPrefix(entries[0].Text, "- fix caf"))
	assert.True(t, strings.HasSuffix(entries[0].Text, "crash"))
}

func TestParse_Separators(t *testing.T) {
	body := "Mon Jan  5 10:00:00 2024 - a@suse.com\n- text\n"

	t.Run("77 hyphens", func(t *testing.T) {
		entries := parseString(t, body+strings.Repeat("-", 77)+"\n", DefaultParseOptions())
		assert.Len(t, entries, 1)
	})
	t.Run("trailing whitespace and CRLF", func(t *testing.T) {
		entries := parseString(t, strings.ReplaceAll(body, "\n", "\r\n")+sep67+"  \r\n", DefaultParseOptions())
		require.Len(t, entries, 1)
		assert.Equal(t, "- text", entries[0].Text)
	})
	t.Run("short run is body text", func(t *testing.T) {
		entries := parseString(t, body+"----------\n- more\n"+sep67+"\n", DefaultParseOptions())
		require.Len(t, entries, 1)
		assert.Equal(t, "- text\n----------\n- more", entries[0].Text)
	})
	t.Run("custom width", func(t *testing.T) {
		opts := DefaultParseOptions()
		opts.SeparatorWidth = 77
		entries := parseString(t, body+sep67+"\n", opts)
		assert.Empty(t, entries)
	})
	t.Run("long run inside a body closes the block", func(t *testing.T) {
		entries := parseString(t, body+strings.Repeat("-", 70)+"\n- more\n"+sep67+"\n", DefaultParseOptions())
		require.Len(t, entries, 2)
		assert.Empty(t, entries[1].Author)
	})
	t.Run("width 77 keeps shorter runs as body text", func(t *testing.T) {
		opts := DefaultParseOptions()
		opts.SeparatorWidth = 77
		sep77 := strings.Repeat("-", 77)
		entries := parseString(t, body+strings.Repeat("-", 70)+"\n- more\n"+sep77+"\n", opts)
		require.Len(t, entries, 1)
		assert.Equal(t, "- text\n"+strings.Repeat("-", 70)+"\n- more", entries[0].Text)
	})
	t.Run("zero width uses default", func(t *testing.T) {
		entries := parseString(t, body+sep67+"\n", ParseOptions{})
		assert.Len(t, entries, 1)
	})
}

func TestParse_BlankBlocksAreSkipped(t *testing.T) {
	content := sep67 + "\n\n  \n" + sep67 + "\nMon Jan  5 10:00:00 2024 - a@suse.com\n\n" + sep67 + "\n"
	assert.Empty(t, parseString(t, content, DefaultParseOptions()))
}

func TestParse_BlockWithoutHeader(t *testing.T) {
	entries := parseString(t, "- orphan text\n"+sep67+"\n", DefaultParseOptions())
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Author)
	assert.Equal(t, schema.EpochSentinel, entries[0].Date)
}

func TestParse_CustomAliases(t *testing.T) {
	opts := DefaultParseOptions()
	opts.Aliases = []schema.DomainAlias{{From: "example.org", To: "example.com"}}
	entries := parseString(t, "Mon Jan  5 10:00:00 2024 - dev@example.org\n- x\n"+sep67+"\n", opts)
	require.Len(t, entries, 1)
	assert.Equal(t, "dev@example.com", entries[0].Author)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Mon Jan  5 10:00:00 2024", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"Mon Jan  5 10:00:00 UTC 2024", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"Mon Jan 15 23:59:59 2024", time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)},
		{"Mon Jan  5 2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"Wed Oct 16 12:00:00 CEST 2013", time.Date(2013, 10, 16, 10, 0, 0, 0, time.UTC)},
		{"Mon Jan  5 10:00:00 CET 2024", time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)},
		{"Mon Jan  5 10:00:00 EST 2024", time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC)},
		{"Mon Jan  5 10:00:00 GMT 2024", time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{"Tue Feb 30 10:00:00 2024", schema.EpochSentinel},
		{"Mon Foo  5 10:00:00 2024", schema.EpochSentinel},
		{"Mon Jan 2024", schema.EpochSentinel},
		{"not a date", schema.EpochSentinel},
		{"", schema.EpochSentinel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.in))
		})
	}
}
