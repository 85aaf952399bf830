package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAuthor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jdoe@suse.cz", "jdoe@suse.com"},
		{"jdoe@suse.de", "jdoe@suse.com"},
		{"  jdoe@suse.com  ", "jdoe@suse.com"},
		{"jdoe@novell.com", "jdoe@novell.com"},
		{"suse.de@suse.cz", "suse.com@suse.com"}, // first occurrence per alias
		{"Jane Doe <jdoe@suse.de>", "Jane Doe <jdoe@suse.com>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAuthor(tt.in, DefaultDomainAliases))
		})
	}
}

func TestNormalizeAuthor_NoAliases(t *testing.T) {
	assert.Equal(t, "jdoe@suse.cz", NormalizeAuthor(" jdoe@suse.cz", nil))
}

func TestParseDomainAliases(t *testing.T) {
	aliases, err := ParseDomainAliases([]string{"example.org=example.com", " ", "a.test = b.test"})
	require.NoError(t, err)
	assert.Equal(t, []DomainAlias{
		{From: "example.org", To: "example.com"},
		{From: "a.test", To: "b.test"},
	}, aliases)

	for _, bad := range []string{"noequals", "=to", "from="} {
		_, err := ParseDomainAliases([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestEntryKey(t *testing.T) {
	e := Entry{ID: 4, Author: "a@suse.com", Date: EpochSentinel, Package: "p", Text: "- x", Score: 3}
	assert.Equal(t, EntryKey{Author: "a@suse.com", Date: EpochSentinel, Package: "p"}, e.Key())
}
