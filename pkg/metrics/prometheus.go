// Package metrics provides Prometheus metrics for the tpmScraper pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Table I/O
	tablesRead    prometheus.Counter
	tablesWritten prometheus.Counter
	filesSkipped  prometheus.Counter

	// Row-level throughput
	rowsKept    prometheus.Counter
	rowsDropped prometheus.Counter

	// Reference index
	genesIndexed prometheus.Gauge

	// Enrichment service boundary
	enrichmentRequests prometheus.Counter
	enrichmentErrors   prometheus.Counter

	// Per-stage wall time
	stageDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// Default returns the process-wide metrics manager.
func Default() *Manager { return globalManager }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "tpmscraper",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.tablesRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tables_read_total",
		Help:      "Total number of input tables successfully read",
	})

	m.tablesWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tables_written_total",
		Help:      "Total number of output tables written",
	})

	m.filesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "files_skipped_total",
		Help:      "Total number of input files skipped (missing or unreadable)",
	})

	m.rowsKept = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_kept_total",
		Help:      "Total number of rows that passed the expression threshold",
	})

	m.rowsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_dropped_total",
		Help:      "Total number of rows dropped by the expression threshold",
	})

	m.genesIndexed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "genes_indexed",
		Help:      "Number of genes in the reference expression index",
	})

	m.enrichmentRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_requests_total",
		Help:      "Total number of enrichment service requests issued",
	})

	m.enrichmentErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_errors_total",
		Help:      "Total number of failed enrichment service requests",
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stage_duration_seconds",
		Help:      "Histogram of pipeline stage wall time in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"stage"})
}

// RecordTableRead increments the tables-read counter.
func (m *Manager) RecordTableRead() {
	if m.enabled {
		m.tablesRead.Inc()
	}
}

// RecordTableWritten increments the tables-written counter.
func (m *Manager) RecordTableWritten() {
	if m.enabled {
		m.tablesWritten.Inc()
	}
}

// RecordFileSkipped increments the skipped-files counter.
func (m *Manager) RecordFileSkipped() {
	if m.enabled {
		m.filesSkipped.Inc()
	}
}

// RecordRowsFiltered accounts for one threshold-filter pass.
func (m *Manager) RecordRowsFiltered(kept, dropped int) {
	if m.enabled {
		m.rowsKept.Add(float64(kept))
		m.rowsDropped.Add(float64(dropped))
	}
}

// SetGenesIndexed records the size of the reference index.
func (m *Manager) SetGenesIndexed(n int) {
	if m.enabled {
		m.genesIndexed.Set(float64(n))
	}
}

// RecordEnrichmentRequest increments the enrichment request counter.
func (m *Manager) RecordEnrichmentRequest() {
	if m.enabled {
		m.enrichmentRequests.Inc()
	}
}

// RecordEnrichmentError increments the enrichment error counter.
func (m *Manager) RecordEnrichmentError() {
	if m.enabled {
		m.enrichmentErrors.Inc()
	}
}

// ObserveStageDuration records wall time for one pipeline stage.
func (m *Manager) ObserveStageDuration(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// Handler returns an HTTP handler exposing this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
