// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file with SCHEMAKIT_* environment
// overrides (see package config).
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/artpar/schemakit/adapters/atlas"
	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/adapters/fsfind"
	apihttp "github.com/artpar/schemakit/adapters/http"
	"github.com/artpar/schemakit/adapters/metrics"
	"github.com/artpar/schemakit/adapters/migrator"
	"github.com/artpar/schemakit/adapters/modreader"
	"github.com/artpar/schemakit/adapters/seeder"
	"github.com/artpar/schemakit/adapters/snapshot"
	"github.com/artpar/schemakit/config"
	"github.com/artpar/schemakit/core/loader"
	"github.com/artpar/schemakit/core/registry"
	"github.com/artpar/schemakit/ports"
)

// Reload triggers, used as the "trigger" metrics label.
const (
	TriggerStartup = "startup"
	TriggerWatch   = "watch"
	TriggerConfig  = "config"
	TriggerHTTP    = "http"
	TriggerCLI     = "cli"
)

// Options provides optional configuration for application initialization.
type Options struct {
	// Holder enables hot reload of the reloadable config fields.
	Holder *config.Holder

	// MetricsRegistry replaces the default prometheus registry.
	MetricsRegistry *prometheus.Registry

	// DisableServer skips the HTTP server, e.g. for one-shot CLI loads.
	DisableServer bool
}

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	Registry   *registry.Registry
	Metrics    *metrics.Collector
	DB         *dbconn.DB
	HTTPServer *http.Server

	// Set when a database is configured, even if nothing is applied.
	Planner   *atlas.Synchronizer
	Migrator  *migrator.Migrator
	Snapshots *snapshot.Store

	holder *config.Holder
	loader *loader.Loader
	sync   ports.Synchronizer

	reloadMu     sync.Mutex
	shutdownOnce sync.Once
}

// New creates and initializes the application. The schema is not loaded
// until Reload or Run is called.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	a := &App{
		Logger:   logger,
		Config:   cfg,
		Registry: registry.New(),
		holder:   opts.Holder,
	}

	logger.Info().
		Str("path", cfg.Schema.Path).
		Str("category", cfg.Schema.Category).
		Msg("initializing schemakit")

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		if opts.MetricsRegistry != nil {
			a.Metrics = metrics.NewWithRegistry(opts.MetricsRegistry)
			metricsHandler = promhttp.HandlerFor(opts.MetricsRegistry, promhttp.HandlerOpts{})
		} else {
			a.Metrics = metrics.New()
			metricsHandler = promhttp.Handler()
		}
		logger.Info().Msg("prometheus metrics enabled")
	}

	var finder ports.FileFinder = fsfind.New(cfg.Schema.Extensions...)
	if a.Metrics != nil {
		finder = a.Metrics.Finder(finder)
	}
	a.loader = loader.New(finder, modreader.New())

	if cfg.Database.DSN != "" {
		if err := a.initDatabase(); err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
	}

	if !opts.DisableServer {
		a.initHTTPServer(metricsHandler)
	}

	if a.holder != nil {
		a.watchConfig()
	}

	return a, nil
}

func (a *App) initDatabase() error {
	dbCfg := a.Config.Database

	db, err := dbconn.Open(dbCfg.Driver, dbCfg.DSN)
	if err != nil {
		return err
	}

	if err := db.Migrate(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.DB = db
	a.Planner = atlas.New(db, atlas.Options{AllowDrops: dbCfg.AllowDrops}, a.Logger)
	a.Migrator = migrator.New(db, a.Logger)
	a.Snapshots = snapshot.New(db, a.Logger)

	// DDL first so migrations and seeds see the declared tables.
	var chain ports.Synchronizers
	add := func(name string, enabled bool, s ports.Synchronizer) {
		if !enabled {
			return
		}
		if a.Metrics != nil {
			s = a.Metrics.Synchronizer(name, s)
		}
		chain = append(chain, s)
	}
	add("ddl", dbCfg.ApplyDDL, a.Planner)
	add("migrations", dbCfg.ApplyMigrations, a.Migrator)
	add("seeds", dbCfg.ApplySeeds, seeder.New(db, a.Logger))
	add("snapshots", dbCfg.Snapshots, a.Snapshots)

	if len(chain) > 0 {
		a.sync = chain
	}

	a.Logger.Info().
		Str("driver", dbCfg.Driver).
		Int("synchronizers", len(chain)).
		Msg("database initialized")
	return nil
}

func (a *App) initHTTPServer(metricsHandler http.Handler) {
	srv := a.Config.Server

	routerCfg := apihttp.RouterConfig{
		Reloader:      a,
		Timeout:       srv.WriteTimeout,
		EnableOpenAPI: srv.OpenAPI,
	}
	if a.Metrics != nil {
		routerCfg.Metrics = a.Metrics
		routerCfg.MetricsHandler = metricsHandler
		routerCfg.MetricsPath = a.Config.Metrics.Path
	}

	a.HTTPServer = &http.Server{
		Addr:              srv.Addr(),
		Handler:           apihttp.NewRouter(a.Registry, a.Logger, routerCfg),
		ReadTimeout:       srv.ReadTimeout,
		ReadHeaderTimeout: srv.ReadTimeout,
		WriteTimeout:      srv.WriteTimeout,
	}
}

// watchConfig applies hot-reloaded config fields.
func (a *App) watchConfig() {
	a.holder.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
		if a.Metrics != nil {
			a.Metrics.ConfigReloads.Inc()
			a.Metrics.ConfigLastReload.SetToCurrentTime()
		}
		if err := a.Reload(context.Background(), TriggerConfig); err != nil {
			a.Logger.Error().Err(err).Msg("schema reload after config change failed")
		}
	})
	a.holder.OnError(func(err error) {
		if a.Metrics != nil {
			a.Metrics.ConfigReloadErrors.Inc()
		}
	})
}

// currentConfig returns the hot-reloaded config when a holder is set.
func (a *App) currentConfig() *config.Config {
	if a.holder != nil {
		return a.holder.Get()
	}
	return a.Config
}

// Reload loads the schema directory, runs the configured synchronizers and
// publishes the result. A failed load leaves the published document as it
// was. The schema path is fixed at startup; the category follows config
// reloads.
func (a *App) Reload(ctx context.Context, trigger string) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	cfg := a.currentConfig()
	start := time.Now()

	doc, err := a.loader.Load(ctx, loader.Config{
		Path:     a.Config.Schema.Path,
		Category: cfg.Schema.Category,
		Database: a.sync,
	})
	took := time.Since(start)
	if a.Metrics != nil {
		a.Metrics.ObserveLoad(trigger, took, doc, err)
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("trigger", trigger).Msg("schema load failed")
		return fmt.Errorf("load schema: %w", err)
	}

	changed, err := a.Registry.Publish(doc, time.Now())
	if err != nil {
		a.Logger.Error().Err(err).Str("trigger", trigger).Msg("schema rejected")
		return err
	}

	summary := doc.Summary()
	event := a.Logger.Debug()
	if changed {
		event = a.Logger.Info()
	}
	event.
		Str("trigger", trigger).
		Bool("changed", changed).
		Int("entities", summary.Entities).
		Int("relationships", summary.Relationships).
		Int("indexes", summary.Indexes).
		Int("migrations", summary.Migrations).
		Int("seeds", summary.Seeds).
		Dur("took", took).
		Msg("schema loaded")
	return nil
}

// Run loads the schema, then serves and watches until ctx is done or
// SIGINT/SIGTERM arrives. It shuts the application down before returning.
func (a *App) Run(ctx context.Context) error {
	defer a.Shutdown()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Reload(ctx, TriggerStartup); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.HTTPServer != nil {
		g.Go(func() error {
			a.Logger.Info().
				Str("addr", a.HTTPServer.Addr).
				Msg("starting http server")
			if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
	}

	cfg := a.currentConfig()
	if cfg.Watch.Enabled && a.Config.Schema.Path != "" {
		w, err := NewWatcher(a.Config.Schema.Path, cfg.Watch.Debounce, a.Logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return w.Run(gctx, func(ctx context.Context) {
				// Failures are logged by Reload; the previous document stays.
				_ = a.Reload(ctx, TriggerWatch)
			})
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.Logger.Info().Msg("shutting down")
		}
		a.stopServer()
		return nil
	})

	return g.Wait()
}

func (a *App) stopServer() {
	if a.HTTPServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("http server shutdown error")
	}
}

// Shutdown gracefully stops the application. It is safe to call more than
// once.
func (a *App) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.stopServer()

		if a.holder != nil {
			a.holder.Stop()
		}

		if a.DB != nil {
			if err := a.DB.Close(); err != nil {
				a.Logger.Error().Err(err).Msg("database close error")
			}
		}

		a.Logger.Info().Msg("shutdown complete")
	})
	return nil
}

// NewLogger creates the process logger and sets the global level.
func NewLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
