package contract

import (
	"testing"

	"github.com/huangsam/changescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns raw input equivalent to the CLI defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Backend:          "sqlite",
		Output:           "text",
		Limit:            DefaultResultLimit,
		Color:            "yes",
		EmailThreshold:   DefaultEmailThreshold,
		PackageThreshold: DefaultPackageThreshold,
		DefaultPoints:    DefaultPoints,
		UpdatePoints:     DefaultUpdatePoints,
		FeaturePoints:    DefaultFeaturePoints,
		MaxPackages:      DefaultMaxPackages,
		SeparatorWidth:   DefaultSeparatorWidth,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "xml" }, expectError: "invalid output format"},
		{name: "zero limit", mutate: func(in *ConfigRawInput) { in.Limit = 0 }, expectError: "limit must be greater than 0"},
		{name: "limit too large", mutate: func(in *ConfigRawInput) { in.Limit = MaxResultLimit + 1 }, expectError: "cannot exceed"},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "blue" }, expectError: "invalid --color value"},
		{name: "invalid backend", mutate: func(in *ConfigRawInput) { in.Backend = "oracle" }, expectError: "invalid backend"},
		{name: "mysql without dsn", mutate: func(in *ConfigRawInput) { in.Backend = "mysql" }, expectError: "db is required"},
		{name: "zero default points", mutate: func(in *ConfigRawInput) { in.DefaultPoints = 0 }, expectError: "default-points"},
		{name: "negative multiplier", mutate: func(in *ConfigRawInput) { in.UpdatePoints = -1 }, expectError: "cannot be negative"},
		{name: "negative threshold", mutate: func(in *ConfigRawInput) { in.EmailThreshold = -1 }, expectError: "thresholds cannot be negative"},
		{name: "zero max packages", mutate: func(in *ConfigRawInput) { in.MaxPackages = 0 }, expectError: "max-packages"},
		{name: "zero separator width", mutate: func(in *ConfigRawInput) { in.SeparatorWidth = 0 }, expectError: "separator-width"},
		{name: "bad alias", mutate: func(in *ConfigRawInput) { in.DomainAliases = []string{"nodelimiter"} }, expectError: "alias"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, in)
			if tt.expectError != "" {
				assert.ErrorContains(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, DefaultBaseDir, cfg.BaseDir)
	assert.Equal(t, schema.SQLiteBackend, cfg.Backend)
	assert.Equal(t, DefaultDBPath, cfg.DBConnect)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Equal(t, schema.DefaultDomainAliases, cfg.DomainAliases)
	assert.Equal(t, DefaultSendmailPath, cfg.SendmailPath)
	assert.Equal(t, DefaultWikiURL, cfg.WikiURL)
	assert.Equal(t, "Tell us about new features in openSUSE 13.1", cfg.MailSubject)
	assert.Equal(t, 25000.0, cfg.EmailCutoff())
	assert.Equal(t, 15000.0, cfg.PackageCutoff())
	assert.Equal(t, schema.CheckExisting, cfg.DedupMode())
}

func TestProcessAndValidate_Overrides(t *testing.T) {
	in := validInput()
	in.Base = "/srv/diff"
	in.Backend = "PostgreSQL"
	in.DB = "host=localhost dbname=changes"
	in.Output = "YAML"
	in.Fast = true
	in.DomainAliases = []string{"example.net=example.com"}
	in.Release = "openSUSE 15.6"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, in))
	assert.Equal(t, "/srv/diff", cfg.BaseDir)
	assert.Equal(t, schema.PostgreSQLBackend, cfg.Backend)
	assert.Equal(t, schema.YAMLOut, cfg.Output)
	assert.Equal(t, schema.Force, cfg.DedupMode())
	assert.Equal(t, []schema.DomainAlias{{From: "example.net", To: "example.com"}}, cfg.DomainAliases)
	assert.Equal(t, "Tell us about new features in openSUSE 15.6", cfg.MailSubject)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{schema.MySQLBackend, "user:pass@localhost/db", true},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{schema.PostgreSQLBackend, "host=localhost dbname=db", false},
		{schema.PostgreSQLBackend, "postgres://u@localhost/db", false},
		{schema.PostgreSQLBackend, "dbname=db", true},
		{"oracle", "x", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend)+" "+tt.connStr, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{DomainAliases: []schema.DomainAlias{{From: "a", To: "b"}}, ResultLimit: 5}
	clone := cfg.Clone()
	clone.DomainAliases[0].To = "c"
	clone.ResultLimit = 9
	assert.Equal(t, "b", cfg.DomainAliases[0].To)
	assert.Equal(t, 5, cfg.ResultLimit)
}

func TestParams(t *testing.T) {
	cfg := &Config{BaseDir: "diff", Backend: schema.SQLiteBackend, Fast: true, DefaultPoints: 100}
	params := cfg.Params()
	assert.Equal(t, "diff", params["base"])
	assert.Equal(t, "sqlite", params["backend"])
	assert.Equal(t, true, params["fast"])
	assert.Equal(t, int64(100), params["default-points"])
}
