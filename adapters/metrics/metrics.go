// Package metrics provides Prometheus metrics collection for schemakit.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/artpar/schemakit/core/schema"
	"github.com/artpar/schemakit/ports"
)

const namespace = "schemakit"

// Collector holds all Prometheus metrics for schemakit.
type Collector struct {
	// Load metrics
	LoadsTotal   *prometheus.CounterVec
	LoadErrors   *prometheus.CounterVec
	LoadDuration *prometheus.HistogramVec
	LastLoad     prometheus.Gauge
	FilesFound   prometheus.Gauge
	Definitions  *prometheus.GaugeVec

	// Synchronizer metrics
	SyncDuration *prometheus.HistogramVec
	SyncErrors   *prometheus.CounterVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a new metrics collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		LoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of successful schema loads",
			},
			[]string{"trigger"},
		),
		LoadErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_errors_total",
				Help:      "Total number of failed schema loads",
			},
			[]string{"trigger"},
		),
		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Schema load duration in seconds, synchronization included",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"trigger"},
		),
		LastLoad: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_load_timestamp",
				Help:      "Unix timestamp of the last successful schema load",
			},
		),
		FilesFound: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "files_found",
				Help:      "Number of schema files found by the last discovery",
			},
		),
		Definitions: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definitions",
				Help:      "Number of definitions in the current document, by kind",
			},
			[]string{"kind"},
		),

		SyncDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Synchronizer duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"synchronizer"},
		),
		SyncErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_errors_total",
				Help:      "Total number of synchronizer failures",
			},
			[]string{"synchronizer"},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of introspection requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Introspection request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveLoad records the outcome of one load.
func (c *Collector) ObserveLoad(trigger string, took time.Duration, doc schema.Document, err error) {
	c.LoadDuration.WithLabelValues(trigger).Observe(took.Seconds())
	if err != nil {
		c.LoadErrors.WithLabelValues(trigger).Inc()
		return
	}

	c.LoadsTotal.WithLabelValues(trigger).Inc()
	c.LastLoad.SetToCurrentTime()

	summary := doc.Summary()
	for _, k := range schema.Kinds() {
		c.Definitions.WithLabelValues(k.String()).Set(float64(summary.Count(k)))
	}
}

// Finder wraps a file finder to record how many files it finds.
func (c *Collector) Finder(next ports.FileFinder) ports.FileFinder {
	return ports.FileFinderFunc(func(dir, category string) ([]string, error) {
		files, err := next.Find(dir, category)
		if err == nil {
			c.FilesFound.Set(float64(len(files)))
		}
		return files, err
	})
}

// Synchronizer wraps a synchronizer to record its duration and failures
// under name.
func (c *Collector) Synchronizer(name string, next ports.Synchronizer) ports.Synchronizer {
	return ports.SynchronizerFunc(func(ctx context.Context, doc schema.Document) error {
		start := time.Now()
		err := next.Synchronize(ctx, doc)
		c.SyncDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if err != nil {
			c.SyncErrors.WithLabelValues(name).Inc()
		}
		return err
	})
}
