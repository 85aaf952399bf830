package iocache

import (
	"testing"

	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"changescore_entries", false},
		{"_private", false},
		{"Runs2", false},
		{"", true},
		{"2runs", true},
		{"entries; DROP TABLE x", true},
		{"my-table", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestRebind(t *testing.T) {
	q := "SELECT 1 FROM t WHERE a = ? AND b = ? LIMIT 1"
	assert.Equal(t, q, rebind(q, schema.SQLiteBackend))
	assert.Equal(t, q, rebind(q, schema.MySQLBackend))
	assert.Equal(t, "SELECT 1 FROM t WHERE a = $1 AND b = $2 LIMIT 1", rebind(q, schema.PostgreSQLBackend))
}

func TestCastInt(t *testing.T) {
	assert.Equal(t, "SUM(score)", castInt("SUM(score)", schema.SQLiteBackend))
	assert.Equal(t, "CAST(SUM(score) AS SIGNED)", castInt("SUM(score)", schema.MySQLBackend))
	assert.Equal(t, "CAST(SUM(score) AS BIGINT)", castInt("SUM(score)", schema.PostgreSQLBackend))
}

func TestCreateStatements(t *testing.T) {
	for backend := range schema.ValidDatabaseBackends {
		t.Run(string(backend), func(t *testing.T) {
			stmts := createStatements(backend)
			assert.NotEmpty(t, stmts)
			for _, stmt := range stmts {
				assert.Contains(t, stmt, "IF NOT EXISTS")
			}
		})
	}
	for _, stmt := range createStatements(schema.MySQLBackend) {
		assert.NotContains(t, stmt, "CREATE INDEX")
	}
}
