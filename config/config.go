// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/schemakit/core/convention"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Schema   SchemaConfig   `yaml:"schema"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SchemaConfig configures where schema files are discovered.
type SchemaConfig struct {
	// Path is the schema directory. Empty loads an empty document.
	Path       string   `yaml:"path"`
	Category   string   `yaml:"category"`   // "schema", "migration" or "seed"
	Extensions []string `yaml:"extensions"` // empty = every supported format
}

// DatabaseConfig configures synchronization. Nothing is synchronized unless
// a DSN is set and at least one apply flag is on.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // "sqlite", "sqlite3", "postgres" or "mysql"
	DSN             string `yaml:"dsn"`
	ApplyDDL        bool   `yaml:"apply_ddl"`
	ApplyMigrations bool   `yaml:"apply_migrations"`
	ApplySeeds      bool   `yaml:"apply_seeds"`
	AllowDrops      bool   `yaml:"allow_drops"`
	Snapshots       bool   `yaml:"snapshots"`
}

// Enabled reports whether any synchronizer is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != "" && (d.ApplyDDL || d.ApplyMigrations || d.ApplySeeds || d.Snapshots)
}

// ServerConfig configures the introspection HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	OpenAPI      bool          `yaml:"openapi"` // serve /swagger and /.well-known/openapi.json
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WatchConfig configures reloading on file changes.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	SCHEMAKIT_SCHEMA_PATH                 - Schema directory
//	SCHEMAKIT_SCHEMA_CATEGORY             - schema, migration or seed (default: schema)
//	SCHEMAKIT_SCHEMA_EXTENSIONS           - Comma separated extensions (default: all)
//	SCHEMAKIT_DATABASE_DRIVER             - sqlite, sqlite3, postgres or mysql (default: sqlite)
//	SCHEMAKIT_DATABASE_DSN                - Data source name
//	SCHEMAKIT_DATABASE_APPLY_DDL          - Create and alter entity tables
//	SCHEMAKIT_DATABASE_APPLY_MIGRATIONS   - Run migration definitions
//	SCHEMAKIT_DATABASE_APPLY_SEEDS        - Insert seed rows
//	SCHEMAKIT_DATABASE_ALLOW_DROPS        - Allow destructive schema changes
//	SCHEMAKIT_DATABASE_SNAPSHOTS          - Record document snapshots
//	SCHEMAKIT_SERVER_HOST                 - Server host (default: 127.0.0.1)
//	SCHEMAKIT_SERVER_PORT                 - Server port (default: 8090)
//	SCHEMAKIT_SERVER_OPENAPI              - Serve the OpenAPI document and Swagger UI
//	SCHEMAKIT_WATCH_ENABLED               - Reload on file changes
//	SCHEMAKIT_WATCH_DEBOUNCE              - Quiet period before reloading (default: 250ms)
//	SCHEMAKIT_LOG_LEVEL                   - Log level: debug, info, warn, error (default: info)
//	SCHEMAKIT_LOG_FORMAT                  - Log format: json or console (default: console)
//	SCHEMAKIT_METRICS_ENABLED             - Enable /metrics endpoint
//	SCHEMAKIT_METRICS_PATH                - Metrics path (default: /metrics)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads from path when the file exists and from the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies SCHEMAKIT_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Schema configuration
	if v := os.Getenv("SCHEMAKIT_SCHEMA_PATH"); v != "" {
		cfg.Schema.Path = v
	}
	if v := os.Getenv("SCHEMAKIT_SCHEMA_CATEGORY"); v != "" {
		cfg.Schema.Category = v
	}
	if v := os.Getenv("SCHEMAKIT_SCHEMA_EXTENSIONS"); v != "" {
		cfg.Schema.Extensions = splitList(v)
	}

	// Database configuration
	if v := os.Getenv("SCHEMAKIT_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_APPLY_DDL"); v != "" {
		cfg.Database.ApplyDDL = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_APPLY_MIGRATIONS"); v != "" {
		cfg.Database.ApplyMigrations = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_APPLY_SEEDS"); v != "" {
		cfg.Database.ApplySeeds = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_ALLOW_DROPS"); v != "" {
		cfg.Database.AllowDrops = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_DATABASE_SNAPSHOTS"); v != "" {
		cfg.Database.Snapshots = parseBool(v)
	}

	// Server configuration
	if v := os.Getenv("SCHEMAKIT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SCHEMAKIT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SCHEMAKIT_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("SCHEMAKIT_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := os.Getenv("SCHEMAKIT_SERVER_OPENAPI"); v != "" {
		cfg.Server.OpenAPI = parseBool(v)
	}

	// Watch configuration
	if v := os.Getenv("SCHEMAKIT_WATCH_ENABLED"); v != "" {
		cfg.Watch.Enabled = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}

	// Logging configuration
	if v := os.Getenv("SCHEMAKIT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SCHEMAKIT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("SCHEMAKIT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("SCHEMAKIT_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Schema.Category == "" {
		cfg.Schema.Category = convention.CategorySchema
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	if !convention.KnownCategory(cfg.Schema.Category) {
		return fmt.Errorf("schema.category must be one of: schema, migration, seed, got %q", cfg.Schema.Category)
	}
	for i, ext := range cfg.Schema.Extensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" {
			return fmt.Errorf("schema.extensions[%d] is empty", i)
		}
	}

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true, "postgres": true, "mysql": true}
	if !validDrivers[cfg.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, sqlite3, postgres, mysql, got %q", cfg.Database.Driver)
	}
	db := cfg.Database
	if db.DSN == "" && (db.ApplyDDL || db.ApplyMigrations || db.ApplySeeds || db.Snapshots) {
		return fmt.Errorf("database.dsn is required when synchronization is enabled")
	}
	if db.AllowDrops && !db.ApplyDDL {
		return fmt.Errorf("database.allow_drops requires database.apply_ddl")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Watch.Enabled && cfg.Schema.Path == "" {
		return fmt.Errorf("schema.path is required when watch.enabled is set")
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}

// Defaults returns a configuration built from defaults and environment
// overrides only. Unlike LoadFromEnv it does not validate, so callers can
// adjust fields (such as a path from the command line) first.
func Defaults() *Config {
	var cfg Config
	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	return &cfg
}
