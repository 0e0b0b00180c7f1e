// Package metrics records pipeline run metrics in a private Prometheus
// registry and flushes them to a node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/suykerbuyk/x-heatmap/internal/config"
)

type Recorder interface {
	ObserveRun(outcome string, duration time.Duration)
	AddRecords(n int)
	SetYears(n int)
	IncTimestampFallbacks()
	AddIgnoredFields(n int)
	IncCacheHits()
	IncCacheMisses()
	// Flush writes the current values to the configured sink, if any.
	Flush() error
}

type Provider struct {
	registry *prometheus.Registry
	textfile string

	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Histogram
	recordsTotal       prometheus.Counter
	yearsAvailable     prometheus.Gauge
	timestampFallbacks prometheus.Counter
	ignoredFields      prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
}

// New returns a Provider when metrics are enabled, a no-op Recorder otherwise.
func New(cfg config.MetricsConfig) Recorder {
	if !cfg.Enabled {
		return &noopMetrics{}
	}
	return NewProvider(cfg.Textfile)
}

// NewProvider registers the pipeline collectors on a fresh registry.
func NewProvider(textfile string) *Provider {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Provider{
		registry: reg,
		textfile: textfile,

		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "xh_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}),

		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "xh_run_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		recordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "xh_records_parsed_total",
			Help: "Total number of records parsed from archives",
		}),

		yearsAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Name: "xh_years_available",
			Help: "Number of years with activity in the last processed archive",
		}),

		timestampFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "xh_timestamp_fallbacks_total",
			Help: "Timestamps that could not be parsed and fell back to the current time",
		}),

		ignoredFields: factory.NewCounter(prometheus.CounterOpts{
			Name: "xh_fields_ignored_total",
			Help: "Record fields with unreadable values that were zeroed",
		}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "xh_cache_hits_total",
			Help: "Total number of result cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "xh_cache_misses_total",
			Help: "Total number of result cache misses",
		}),
	}
}

func (m *Provider) ObserveRun(outcome string, duration time.Duration) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *Provider) AddRecords(n int) {
	m.recordsTotal.Add(float64(n))
}

func (m *Provider) SetYears(n int) {
	m.yearsAvailable.Set(float64(n))
}

func (m *Provider) IncTimestampFallbacks() {
	m.timestampFallbacks.Inc()
}

func (m *Provider) AddIgnoredFields(n int) {
	m.ignoredFields.Add(float64(n))
}

func (m *Provider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *Provider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

// Registry exposes the underlying registry for gathering.
func (m *Provider) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Provider) Flush() error {
	if m.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.textfile, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) ObserveRun(_ string, _ time.Duration) {}
func (n *noopMetrics) AddRecords(_ int)                     {}
func (n *noopMetrics) SetYears(_ int)                       {}
func (n *noopMetrics) IncTimestampFallbacks()               {}
func (n *noopMetrics) AddIgnoredFields(_ int)               {}
func (n *noopMetrics) IncCacheHits()                        {}
func (n *noopMetrics) IncCacheMisses()                      {}
func (n *noopMetrics) Flush() error                         { return nil }
