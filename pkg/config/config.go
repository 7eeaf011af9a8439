package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unowned-ai/moodtrend/pkg/db"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the runtime configuration shared by every moodtrend command.
type Config struct {
	DBPath   string `yaml:"db"`
	Backend  string `yaml:"backend"`
	WAL      bool   `yaml:"wal"`
	Sync     string `yaml:"sync"`
	HTTPAddr string `yaml:"addr"`
	LogMode  string `yaml:"log_mode"`
}

// Default returns the built-in settings. An empty DBPath means the
// platform default SQLite file.
func Default() Config {
	return Config{
		Sync:     "FULL",
		HTTPAddr: ":8080",
		LogMode:  "dev",
	}
}

// Load applies defaults, then the YAML file at path (if non-empty), then
// MOODTREND_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	// Unmarshalling over c keeps defaults for keys the file omits.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("MOODTREND_DB"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup("MOODTREND_BACKEND"); ok && v != "" {
		c.Backend = v
	}
	if v, ok := lookup("MOODTREND_WAL"); ok && v != "" {
		c.WAL = parseBool(v)
	}
	if v, ok := lookup("MOODTREND_SYNC"); ok && v != "" {
		c.Sync = v
	}
	if v, ok := lookup("MOODTREND_ADDR"); ok && v != "" {
		c.HTTPAddr = v
	}
	if v, ok := lookup("MOODTREND_LOG_MODE"); ok && v != "" {
		c.LogMode = v
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ResolvedBackend returns Backend, or infers one from DBPath when unset.
func (c Config) ResolvedBackend() string {
	if c.Backend != "" {
		return strings.ToLower(c.Backend)
	}
	switch {
	case strings.HasPrefix(c.DBPath, "postgres://"), strings.HasPrefix(c.DBPath, "postgresql://"):
		return records.BackendPostgres
	case c.DBPath == ":memory:":
		return records.BackendMemory
	default:
		return records.BackendSQLite
	}
}

func (c Config) Validate() error {
	switch c.ResolvedBackend() {
	case records.BackendSQLite, records.BackendMemory:
	case records.BackendPostgres:
		if c.DBPath == "" {
			return fmt.Errorf("%w: postgres backend needs a DSN in --db", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if !db.ValidSyncMode(c.Sync) {
		return fmt.Errorf("%w: sync must be one of OFF, NORMAL, FULL, EXTRA, got %q", ErrInvalidConfig, c.Sync)
	}
	return nil
}

// StoreOptions translates the configuration for records.Open.
func (c Config) StoreOptions() records.Options {
	return records.Options{
		Backend: c.ResolvedBackend(),
		DSN:     c.DBPath,
		WAL:     c.WAL,
		Sync:    c.Sync,
	}
}
