package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/schemakit/config"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
schema:
  path: "./schema"
  category: "migration"
  extensions: [".yaml", "toml"]

database:
  driver: "postgres"
  dsn: "postgres://localhost/app"
  apply_ddl: true
  apply_migrations: true
  snapshots: true

server:
  host: "0.0.0.0"
  port: 9090
  read_timeout: 5s

watch:
  enabled: true
  debounce: 1s

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  path: "/prom"
`

	cfg := writeAndLoad(t, content)

	if cfg.Schema.Path != "./schema" {
		t.Errorf("Schema.Path = %s, want ./schema", cfg.Schema.Path)
	}
	if cfg.Schema.Category != "migration" {
		t.Errorf("Schema.Category = %s, want migration", cfg.Schema.Category)
	}
	if len(cfg.Schema.Extensions) != 2 || cfg.Schema.Extensions[1] != "toml" {
		t.Errorf("Schema.Extensions = %v, want [.yaml toml]", cfg.Schema.Extensions)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %s, want postgres", cfg.Database.Driver)
	}
	if !cfg.Database.ApplyDDL || !cfg.Database.ApplyMigrations || cfg.Database.ApplySeeds {
		t.Errorf("Database apply flags = %+v", cfg.Database)
	}
	if !cfg.Database.Enabled() {
		t.Error("Database.Enabled() = false, want true")
	}
	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Server.Addr() = %s, want 0.0.0.0:9090", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != time.Second {
		t.Errorf("Watch = %+v, want enabled with 1s debounce", cfg.Watch)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %s, want json", cfg.Logging.Format)
	}
	if cfg.Metrics.Path != "/prom" {
		t.Errorf("Metrics.Path = %s, want /prom", cfg.Metrics.Path)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, `
schema:
  path: "./schema"
`)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Schema.Category", cfg.Schema.Category, "schema"},
		{"Database.Driver", cfg.Database.Driver, "sqlite"},
		{"Server.Host", cfg.Server.Host, "127.0.0.1"},
		{"Server.Port", cfg.Server.Port, 8090},
		{"Server.ReadTimeout", cfg.Server.ReadTimeout, 10 * time.Second},
		{"Server.WriteTimeout", cfg.Server.WriteTimeout, 30 * time.Second},
		{"Watch.Debounce", cfg.Watch.Debounce, 250 * time.Millisecond},
		{"Logging.Level", cfg.Logging.Level, "info"},
		{"Logging.Format", cfg.Logging.Format, "console"},
		{"Metrics.Path", cfg.Metrics.Path, "/metrics"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("default %s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if cfg.Database.Enabled() {
		t.Error("database sync should be off by default")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg := writeAndLoad(t, "")

	if cfg.Schema.Path != "" {
		t.Errorf("Schema.Path = %q, want empty", cfg.Schema.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_SCHEMA_DIR", "/srv/schema")

	cfg := writeAndLoad(t, `
schema:
  path: "${TEST_SCHEMA_DIR}/app"
`)

	if cfg.Schema.Path != "/srv/schema/app" {
		t.Errorf("Schema.Path = %s, want /srv/schema/app", cfg.Schema.Path)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown category",
			content: "schema:\n  category: bogus\n",
			wantErr: "schema.category",
		},
		{
			name:    "empty extension",
			content: "schema:\n  extensions: [\".\"]\n",
			wantErr: "schema.extensions[0]",
		},
		{
			name:    "unknown driver",
			content: "database:\n  driver: oracle\n",
			wantErr: "database.driver",
		},
		{
			name:    "sync without dsn",
			content: "database:\n  apply_ddl: true\n",
			wantErr: "database.dsn",
		},
		{
			name:    "drops without ddl",
			content: "database:\n  dsn: app.db\n  snapshots: true\n  allow_drops: true\n",
			wantErr: "database.allow_drops",
		},
		{
			name:    "port out of range",
			content: "server:\n  port: 70000\n",
			wantErr: "server.port",
		},
		{
			name:    "watch without path",
			content: "watch:\n  enabled: true\n",
			wantErr: "schema.path",
		},
		{
			name:    "negative debounce",
			content: "watch:\n  debounce: -1s\n",
			wantErr: "watch.debounce",
		},
		{
			name:    "bad log level",
			content: "logging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			content: "logging:\n  format: xml\n",
			wantErr: "logging.format",
		},
		{
			name:    "relative metrics path",
			content: "metrics:\n  path: metrics\n",
			wantErr: "metrics.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)

			_, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "schema: [unclosed")

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("error = %v, want parse config", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCHEMAKIT_SCHEMA_PATH", "/env/schema")
	t.Setenv("SCHEMAKIT_SCHEMA_EXTENSIONS", "yaml, .toml ,")
	t.Setenv("SCHEMAKIT_DATABASE_DRIVER", "mysql")
	t.Setenv("SCHEMAKIT_DATABASE_DSN", "user:pass@/app")
	t.Setenv("SCHEMAKIT_DATABASE_APPLY_DDL", "yes")
	t.Setenv("SCHEMAKIT_DATABASE_APPLY_SEEDS", "1")
	t.Setenv("SCHEMAKIT_SERVER_PORT", "9999")
	t.Setenv("SCHEMAKIT_WATCH_ENABLED", "on")
	t.Setenv("SCHEMAKIT_WATCH_DEBOUNCE", "2s")
	t.Setenv("SCHEMAKIT_LOG_LEVEL", "debug")
	t.Setenv("SCHEMAKIT_METRICS_ENABLED", "true")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Schema.Path != "/env/schema" {
		t.Errorf("Schema.Path = %s, want /env/schema", cfg.Schema.Path)
	}
	if strings.Join(cfg.Schema.Extensions, "|") != "yaml|.toml" {
		t.Errorf("Schema.Extensions = %v, want [yaml .toml]", cfg.Schema.Extensions)
	}
	if cfg.Database.Driver != "mysql" || cfg.Database.DSN != "user:pass@/app" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if !cfg.Database.ApplyDDL || !cfg.Database.ApplySeeds || cfg.Database.ApplyMigrations {
		t.Errorf("Database apply flags = %+v", cfg.Database)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if !cfg.Watch.Enabled || cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("SCHEMAKIT_SCHEMA_CATEGORY", "nope")

	if _, err := config.LoadFromEnv(); err == nil {
		t.Fatal("expected error for invalid category")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SCHEMAKIT_SERVER_PORT", "7777")
	t.Setenv("SCHEMAKIT_LOG_LEVEL", "error")

	cfg := writeAndLoad(t, `
schema:
  path: "./schema"
server:
  port: 8080
logging:
  level: "info"
`)

	// Env should override file
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %s, want error (env override)", cfg.Logging.Level)
	}
	// File value should still be used for non-overridden
	if cfg.Schema.Path != "./schema" {
		t.Errorf("Schema.Path = %s, want ./schema", cfg.Schema.Path)
	}
}

func TestEnvOverrides_InvalidValues(t *testing.T) {
	t.Setenv("SCHEMAKIT_SERVER_PORT", "not-a-number")
	t.Setenv("SCHEMAKIT_SERVER_READ_TIMEOUT", "not-a-duration")
	t.Setenv("SCHEMAKIT_WATCH_DEBOUNCE", "soon")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	// Should use defaults when env vars are invalid
	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090 (default)", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s (default)", cfg.Server.ReadTimeout)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Watch.Debounce = %v, want 250ms (default)", cfg.Watch.Debounce)
	}
}

func TestParseBoolValues(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" on ", true},
		{"false", false},
		{"0", false},
		{"off", false},
		{"maybe", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SCHEMAKIT_METRICS_ENABLED", tt.value)

			cfg, err := config.LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv error: %v", err)
			}
			if cfg.Metrics.Enabled != tt.want {
				t.Errorf("Metrics.Enabled for %q = %v, want %v", tt.value, cfg.Metrics.Enabled, tt.want)
			}
		})
	}
}

func TestLoadWithFallback_FileExists(t *testing.T) {
	path := writeConfigFile(t, `
schema:
  path: "/from/file"
`)

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Schema.Path != "/from/file" {
		t.Errorf("Schema.Path = %s, want /from/file", cfg.Schema.Path)
	}
}

func TestLoadWithFallback_EnvOnly(t *testing.T) {
	t.Setenv("SCHEMAKIT_SCHEMA_PATH", "/from/env")

	for _, path := range []string{"/nonexistent/config.yaml", ""} {
		cfg, err := config.LoadWithFallback(path)
		if err != nil {
			t.Fatalf("LoadWithFallback(%q) error: %v", path, err)
		}
		if cfg.Schema.Path != "/from/env" {
			t.Errorf("LoadWithFallback(%q) Schema.Path = %s, want /from/env", path, cfg.Schema.Path)
		}
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("SCHEMAKIT_LOG_LEVEL", "warn")

	cfg := config.Defaults()
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %s, want warn", cfg.Logging.Level)
	}
	if cfg.Schema.Category != "schema" {
		t.Errorf("Schema.Category = %s, want schema", cfg.Schema.Category)
	}

	// Callers may fill in fields before validating
	cfg.Schema.Path = "./schema"
	cfg.Watch.Enabled = true
	if err := config.Validate(cfg); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestDatabaseConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		db   config.DatabaseConfig
		want bool
	}{
		{"nothing", config.DatabaseConfig{}, false},
		{"dsn only", config.DatabaseConfig{DSN: "app.db"}, false},
		{"flag without dsn", config.DatabaseConfig{ApplyDDL: true}, false},
		{"ddl", config.DatabaseConfig{DSN: "app.db", ApplyDDL: true}, true},
		{"migrations", config.DatabaseConfig{DSN: "app.db", ApplyMigrations: true}, true},
		{"seeds", config.DatabaseConfig{DSN: "app.db", ApplySeeds: true}, true},
		{"snapshots", config.DatabaseConfig{DSN: "app.db", Snapshots: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.db.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Helpers

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}
