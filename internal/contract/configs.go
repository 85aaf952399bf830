package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/changescore/schema"
)

// Default values for configuration.
const (
	DefaultBaseDir          = "diff"
	DefaultDBPath           = "changes.sqlite"
	DefaultPoints           = 100
	DefaultUpdatePoints     = 50
	DefaultFeaturePoints    = 100
	DefaultEmailThreshold   = 250.0
	DefaultPackageThreshold = 150.0
	DefaultMaxPackages      = 10
	DefaultSeparatorWidth   = 67
	DefaultResultLimit      = 25
	MaxResultLimit          = 1000
	DefaultSendmailPath     = "/usr/sbin/sendmail"
	DefaultMailFrom         = "changescore <changescore@localhost>"
	DefaultRelease          = "openSUSE 13.1"
	DefaultWikiURL          = "http://en.opensuse.org/openSUSE:Major_features"
	DefaultSchedule         = "0 6 * * 1"
)

// DefaultMailSubject is formatted with the release name.
const DefaultMailSubject = "Tell us about new features in %s"

// Config holds the runtime configuration for a pipeline run.
// This struct is the "final, validated" config.
type Config struct {
	BaseDir   string
	Backend   schema.DatabaseBackend
	DBConnect string // Path for sqlite, DSN for mysql/postgresql

	Convert bool // Import changelogs before scoring
	Reset   bool // Reset every score before scoring
	Mail    bool // Send digests instead of printing them
	Fast    bool // Bulk heuristics, force-mode import

	EmailThreshold   float64 // Multiplied by DefaultPoints
	PackageThreshold float64 // Multiplied by DefaultPoints
	DefaultPoints    int64
	UpdatePoints     int64
	FeaturePoints    int64
	MaxPackages      int

	SeparatorWidth int
	FlushTrailing  bool
	DomainAliases  []schema.DomainAlias

	SendmailPath string
	MailFrom     string
	MailSubject  string
	Release      string
	WikiURL      string

	Output      schema.OutputMode
	OutputFile  string
	ResultLimit int
	UseColors   bool
	Width       int // Terminal width override (0 = auto-detect)
	LogLevel    string
	Schedule    string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Backend    string `mapstructure:"backend"`
	DB         string `mapstructure:"db"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Limit      int    `mapstructure:"limit"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`
	LogLevel   string `mapstructure:"log-level"`

	// --- Fields from runCmd.Flags() ---
	Base             string  `mapstructure:"base"`
	Convert          bool    `mapstructure:"convert"`
	Reset            bool    `mapstructure:"reset"`
	Mail             bool    `mapstructure:"mail"`
	Fast             bool    `mapstructure:"fast"`
	EmailThreshold   float64 `mapstructure:"email-threshold"`
	PackageThreshold float64 `mapstructure:"package-threshold"`

	// --- Scoring and parsing knobs, usually from the config file ---
	DefaultPoints  int64    `mapstructure:"default-points"`
	UpdatePoints   int64    `mapstructure:"update-points"`
	FeaturePoints  int64    `mapstructure:"feature-points"`
	MaxPackages    int      `mapstructure:"max-packages"`
	SeparatorWidth int      `mapstructure:"separator-width"`
	FlushTrailing  bool     `mapstructure:"flush-trailing"`
	DomainAliases  []string `mapstructure:"domain-aliases"`

	// --- Notification knobs ---
	SendmailPath string `mapstructure:"sendmail-path"`
	MailFrom     string `mapstructure:"mail-from"`
	MailSubject  string `mapstructure:"mail-subject"`
	Release      string `mapstructure:"release"`
	WikiURL      string `mapstructure:"wiki-url"`

	// --- Fields from scheduleCmd.Flags() ---
	Schedule string `mapstructure:"schedule"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.DomainAliases != nil {
		clone.DomainAliases = slices.Clone(c.DomainAliases)
	}
	return &clone
}

// DedupMode returns the import mode implied by the fast flag.
func (c *Config) DedupMode() schema.DedupMode {
	if c.Fast {
		return schema.Force
	}
	return schema.CheckExisting
}

// EmailCutoff is the author sum an author must exceed to be reported.
func (c *Config) EmailCutoff() float64 {
	return c.EmailThreshold * float64(c.DefaultPoints)
}

// PackageCutoff is the package sum a package must exceed to be listed.
func (c *Config) PackageCutoff() float64 {
	return c.PackageThreshold * float64(c.DefaultPoints)
}

// Params returns the run parameters recorded alongside each run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"base":              c.BaseDir,
		"backend":           string(c.Backend),
		"convert":           c.Convert,
		"reset":             c.Reset,
		"mail":              c.Mail,
		"fast":              c.Fast,
		"email-threshold":   c.EmailThreshold,
		"package-threshold": c.PackageThreshold,
		"default-points":    c.DefaultPoints,
		"update-points":     c.UpdatePoints,
		"feature-points":    c.FeaturePoints,
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfig(cfg, input); err != nil {
		return err
	}
	if err := processScoring(cfg, input); err != nil {
		return err
	}
	if err := processParsing(cfg, input); err != nil {
		return err
	}
	processNotification(cfg, input)
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or be a postgres:// URL")
		}
	default:
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql", backend)
	}
	return nil
}

// validateSimpleInputs transfers and validates the presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Convert = input.Convert
	cfg.Reset = input.Reset
	cfg.Mail = input.Mail
	cfg.Fast = input.Fast
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	cfg.Schedule = strings.TrimSpace(input.Schedule)

	cfg.BaseDir = input.Base
	if cfg.BaseDir == "" {
		cfg.BaseDir = DefaultBaseDir
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml", input.Output)
	}
	return nil
}

// validateBackendConfig validates the store backend and its connection string.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if cfg.Backend == "" {
		cfg.Backend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql", input.Backend)
	}
	cfg.DBConnect = input.DB
	if cfg.Backend == schema.SQLiteBackend && cfg.DBConnect == "" {
		cfg.DBConnect = DefaultDBPath
	}
	return ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect)
}

// processScoring validates the weights and thresholds.
func processScoring(cfg *Config, input *ConfigRawInput) error {
	if input.DefaultPoints <= 0 {
		return fmt.Errorf("default-points must be greater than 0 (received %d)", input.DefaultPoints)
	}
	if input.UpdatePoints < 0 || input.FeaturePoints < 0 {
		return fmt.Errorf("update-points and feature-points cannot be negative (received %d, %d)", input.UpdatePoints, input.FeaturePoints)
	}
	if input.EmailThreshold < 0 || input.PackageThreshold < 0 {
		return fmt.Errorf("thresholds cannot be negative (received %g, %g)", input.EmailThreshold, input.PackageThreshold)
	}
	if input.MaxPackages <= 0 {
		return fmt.Errorf("max-packages must be greater than 0 (received %d)", input.MaxPackages)
	}
	cfg.DefaultPoints = input.DefaultPoints
	cfg.UpdatePoints = input.UpdatePoints
	cfg.FeaturePoints = input.FeaturePoints
	cfg.EmailThreshold = input.EmailThreshold
	cfg.PackageThreshold = input.PackageThreshold
	cfg.MaxPackages = input.MaxPackages
	return nil
}

// processParsing validates the changelog parser knobs.
func processParsing(cfg *Config, input *ConfigRawInput) error {
	if input.SeparatorWidth < 1 {
		return fmt.Errorf("separator-width must be at least 1 (received %d)", input.SeparatorWidth)
	}
	cfg.SeparatorWidth = input.SeparatorWidth
	cfg.FlushTrailing = input.FlushTrailing

	if len(input.DomainAliases) == 0 {
		cfg.DomainAliases = slices.Clone(schema.DefaultDomainAliases)
		return nil
	}
	aliases, err := schema.ParseDomainAliases(input.DomainAliases)
	if err != nil {
		return err
	}
	cfg.DomainAliases = aliases
	return nil
}

// processNotification fills the mail settings, falling back to defaults.
func processNotification(cfg *Config, input *ConfigRawInput) {
	cfg.SendmailPath = cmpOr(input.SendmailPath, DefaultSendmailPath)
	cfg.MailFrom = cmpOr(input.MailFrom, DefaultMailFrom)
	cfg.Release = cmpOr(input.Release, DefaultRelease)
	cfg.WikiURL = cmpOr(input.WikiURL, DefaultWikiURL)
	cfg.MailSubject = cmpOr(input.MailSubject, fmt.Sprintf(DefaultMailSubject, cfg.Release))
}

func cmpOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

// GetDefaultDBFilePath returns the SQLite path used when no --db is given,
// resolved against the working directory.
func GetDefaultDBFilePath() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultDBPath
	}
	return filepath.Join(wd, DefaultDBPath)
}
