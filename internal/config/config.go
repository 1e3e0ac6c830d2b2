package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgerflow/internal/logger"
)

// FileName is the config file looked up in the project root.
const FileName = "ledgerflow.yaml"

// Config represents the top-level ledgerflow.yaml configuration. Relative
// paths are resolved against the project root.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Database DatabaseConfig `yaml:"database"`
	Rules    RulesConfig    `yaml:"rules"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	Quality  QualityConfig  `yaml:"quality"`
	Export   ExportConfig   `yaml:"export"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
}

// DataConfig locates the input files.
type DataConfig struct {
	Root    string `yaml:"root"`
	BankDir string `yaml:"bank_dir"`
	CardDir string `yaml:"card_dir"`
}

// DatabaseConfig selects the table store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// RulesConfig points at optional rule files. Empty means built-in rules.
type RulesConfig struct {
	Bank string `yaml:"bank,omitempty"`
	Card string `yaml:"card,omitempty"`
}

// TaxonomyConfig points at an optional taxonomy CSV.
type TaxonomyConfig struct {
	Path string `yaml:"path,omitempty"`
}

// QualityConfig locates the data-quality log.
type QualityConfig struct {
	Log string `yaml:"log"`
}

// ExportConfig is where `ledgerflow export` writes by default.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ScheduleConfig drives `ledgerflow schedule`.
type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Environment variables that override file values.
const (
	EnvDataRoot = "LEDGERFLOW_DATA_ROOT"
	EnvDBDriver = "LEDGERFLOW_DB_DRIVER"
	EnvDBDSN    = "LEDGERFLOW_DB_DSN"
	EnvLogLevel = "LEDGERFLOW_LOG_LEVEL"
	EnvSchedule = "LEDGERFLOW_SCHEDULE"
)

// Load reads a ledgerflow.yaml file from disk. Fields missing from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Root:    "data",
			BankDir: "bank_accounts",
			CardDir: "credit_cards",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "ledgerflow.db",
		},
		Quality: QualityConfig{
			Log: "logs/quality.csv",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Schedule: ScheduleConfig{
			Cron:     "0 6 * * *",
			Timezone: "UTC",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDataRoot); ok {
		c.Data.Root = v
	}
	if v, ok := lookup(EnvDBDriver); ok {
		c.Database.Driver = v
	}
	if v, ok := lookup(EnvDBDSN); ok {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvSchedule); ok {
		c.Schedule.Cron = v
	}
}

// Validate reports every problem in one error.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database.dsn: must not be empty"))
	}
	if strings.TrimSpace(c.Data.Root) == "" {
		errs = append(errs, errors.New("data.root: must not be empty"))
	}
	if c.Data.BankDir == "" || c.Data.CardDir == "" {
		errs = append(errs, errors.New("data.bank_dir and data.card_dir: must not be empty"))
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("schedule.timezone: %w", err))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// Location returns the schedule's time zone. Empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Schedule.Timezone)
}

// Resolve makes p absolute relative to root. Empty stays empty.
func Resolve(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// BankPath returns the bank-account input directory under root.
func (c *Config) BankPath(root string) string {
	return filepath.Join(Resolve(root, c.Data.Root), c.Data.BankDir)
}

// CardPath returns the credit-card input directory under root.
func (c *Config) CardPath(root string) string {
	return filepath.Join(Resolve(root, c.Data.Root), c.Data.CardDir)
}

// DSN returns the database DSN. Sqlite file paths are resolved against root.
func (c *Config) DSN(root string) string {
	if strings.EqualFold(c.Database.Driver, "sqlite") {
		return Resolve(root, c.Database.DSN)
	}
	return c.Database.DSN
}
