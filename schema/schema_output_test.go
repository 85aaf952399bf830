package schema_test

import (
	"testing"

	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name      string
		points    int64
		hasDigest bool
		expected  schema.DigestLabel
	}{
		{"above with digest", 30000, true, schema.NotifyLabel},
		{"above without digest", 30000, false, schema.ReviewLabel},
		{"exactly at threshold", 25000, true, schema.BelowLabel},
		{"below", 100, false, schema.BelowLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetPlainLabel(tt.points, 25000, tt.hasDigest))
		})
	}
}

func TestEnrichAuthors(t *testing.T) {
	totals := []schema.AuthorTotal{
		{Author: "a@suse.com", Points: 40000},
		{Author: "b@suse.com", Points: 30000},
		{Author: "c@suse.com", Points: 10},
	}
	digests := []schema.Digest{{Author: "a@suse.com", Total: 40000}}

	ranked := schema.EnrichAuthors(totals, 25000, digests)

	assert.Len(t, ranked, 3)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, schema.NotifyLabel, ranked[0].Label)
	assert.Equal(t, schema.ReviewLabel, ranked[1].Label)
	assert.Equal(t, schema.BelowLabel, ranked[2].Label)
	assert.Equal(t, "c@suse.com", ranked[2].Author)
}
