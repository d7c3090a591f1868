// Package config provides configuration loading and hot reload.
package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// fileSettle collapses the write bursts editors produce on save.
const fileSettle = 100 * time.Millisecond

// Holder provides thread-safe access to configuration with hot reload support.
// Listeners only run when a reload actually changes a field.
type Holder struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	onError  []func(error)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHolder creates a new config holder and loads the initial configuration.
func NewHolder(path string, logger zerolog.Logger) (*Holder, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}

	return &Holder{
		config: cfg,
		path:   absPath,
		logger: logger.With().Str("component", "config").Logger(),
		stopCh: make(chan struct{}),
	}, nil
}

// Get returns the current configuration. Callers must not modify it.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

// Path returns the absolute path of the config file.
func (h *Holder) Path() string {
	return h.path
}

// OnChange registers a callback for reloads that change at least one field.
func (h *Holder) OnChange(fn func(*Config)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

// OnError registers a callback for failed reloads.
func (h *Holder) OnError(fn func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onError = append(h.onError, fn)
}

// Reload reloads the configuration from disk. On error the old configuration
// stays in place.
func (h *Holder) Reload() error {
	newCfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("config reload failed, keeping old config")
		for _, fn := range h.errorListeners() {
			fn(err)
		}
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	changes := Diff(h.config, newCfg)
	if len(changes) > 0 {
		h.config = newCfg
	}
	onChange := append([]func(*Config){}, h.onChange...)
	h.mu.Unlock()

	if len(changes) == 0 {
		h.logger.Debug().Msg("config file unchanged")
		return nil
	}

	for _, c := range changes {
		event := h.logger.Info()
		msg := "config changed"
		if !c.Reloadable {
			event = h.logger.Warn()
			msg = "config changed, restart required"
		}
		event.Str("field", c.Field).Str("old", c.Old).Str("new", c.New).Msg(msg)
	}

	for _, fn := range onChange {
		fn(newCfg)
	}
	return nil
}

func (h *Holder) errorListeners() []func(error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]func(error){}, h.onError...)
}

// WatchFile starts watching the config file for changes.
func (h *Holder) WatchFile() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	// Watch the directory (more reliable for editors that do atomic saves)
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go h.watchLoop()

	h.logger.Info().Str("path", h.path).Msg("watching config file for changes")
	return nil
}

// WatchSignals starts listening for SIGHUP to trigger reload.
func (h *Holder) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				h.logger.Info().Msg("received SIGHUP, reloading config")
				_ = h.Reload()
			case <-h.stopCh:
				return
			}
		}
	}()
}

// Stop stops watching for file changes and signals. It is safe to call
// more than once.
func (h *Holder) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *Holder) watchLoop() {
	filename := filepath.Base(h.path)

	var settle <-chan time.Time
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			// Atomic saves show up as create.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				settle = time.After(fileSettle)
			}

		case <-settle:
			settle = nil
			_ = h.Reload()

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("file watcher error")

		case <-h.stopCh:
			return
		}
	}
}

// Change is one field that differs between two configurations.
type Change struct {
	Field      string
	Old, New   string
	Reloadable bool
}

type field struct {
	name       string
	reloadable bool
	value      func(*Config) string
}

// fields lists every config field. Reloadable ones take effect on a running
// process; the rest need a restart.
var fields = []field{
	{"schema.path", false, func(c *Config) string { return c.Schema.Path }},
	{"schema.category", true, func(c *Config) string { return c.Schema.Category }},
	{"schema.extensions", false, func(c *Config) string { return strings.Join(c.Schema.Extensions, ",") }},
	{"database.driver", false, func(c *Config) string { return c.Database.Driver }},
	{"database.dsn", false, func(c *Config) string { return c.Database.DSN }},
	{"database.apply_ddl", false, func(c *Config) string { return strconv.FormatBool(c.Database.ApplyDDL) }},
	{"database.apply_migrations", false, func(c *Config) string { return strconv.FormatBool(c.Database.ApplyMigrations) }},
	{"database.apply_seeds", false, func(c *Config) string { return strconv.FormatBool(c.Database.ApplySeeds) }},
	{"database.allow_drops", false, func(c *Config) string { return strconv.FormatBool(c.Database.AllowDrops) }},
	{"database.snapshots", false, func(c *Config) string { return strconv.FormatBool(c.Database.Snapshots) }},
	{"server.host", false, func(c *Config) string { return c.Server.Host }},
	{"server.port", false, func(c *Config) string { return strconv.Itoa(c.Server.Port) }},
	{"server.read_timeout", false, func(c *Config) string { return c.Server.ReadTimeout.String() }},
	{"server.write_timeout", false, func(c *Config) string { return c.Server.WriteTimeout.String() }},
	{"server.openapi", false, func(c *Config) string { return strconv.FormatBool(c.Server.OpenAPI) }},
	{"watch.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Watch.Enabled) }},
	{"watch.debounce", false, func(c *Config) string { return c.Watch.Debounce.String() }},
	{"logging.level", true, func(c *Config) string { return c.Logging.Level }},
	{"logging.format", false, func(c *Config) string { return c.Logging.Format }},
	{"metrics.enabled", false, func(c *Config) string { return strconv.FormatBool(c.Metrics.Enabled) }},
	{"metrics.path", false, func(c *Config) string { return c.Metrics.Path }},
}

// Diff returns the fields that differ between old and new, in declaration
// order. The DSN is reported without its value.
func Diff(old, new *Config) []Change {
	var changes []Change
	for _, f := range fields {
		o, n := f.value(old), f.value(new)
		if o == n {
			continue
		}
		if f.name == "database.dsn" {
			o, n = "***", "***"
		}
		changes = append(changes, Change{Field: f.name, Old: o, New: n, Reloadable: f.reloadable})
	}
	return changes
}

// ReloadableFields returns which fields can be changed without restart.
func ReloadableFields() []string {
	return fieldNames(true)
}

// NonReloadableFields returns which fields require a restart.
func NonReloadableFields() []string {
	return fieldNames(false)
}

func fieldNames(reloadable bool) []string {
	var names []string
	for _, f := range fields {
		if f.reloadable == reloadable {
			names = append(names, f.name)
		}
	}
	return names
}
