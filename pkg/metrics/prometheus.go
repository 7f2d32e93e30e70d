// Package metrics provides Prometheus metrics for the elorank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rating deltas are bounded by K_MAX, so buckets stop there.
var ratingDeltaBuckets = []float64{0.5, 1, 2, 5, 10, 15, 20, 25, 30, 40} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the elorank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Rating engine
	matchesProcessed prometheus.Counter
	invalidRecords   prometheus.Counter
	ratingDelta      prometheus.Histogram
	playersTotal     prometheus.Gauge

	// Runs (read -> compute -> write -> publish)
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastRunUnix    prometheus.Gauge
	lastRunMatches prometheus.Gauge

	// Storage adapters
	sourceReadLatency *prometheus.HistogramVec
	sinkWriteLatency  *prometheus.HistogramVec
	recordsRead       *prometheus.CounterVec
	rowsWritten       *prometheus.CounterVec

	// Repository
	snapshotsPublished     prometheus.Counter
	repositoryQueryLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "elorank",
		subsystem:        "ratings",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.matchesProcessed = m.counter("matches_processed_total", "Total number of match records applied to ratings")
	m.invalidRecords = m.counter("invalid_records_total", "Total number of match records rejected as invalid")
	m.ratingDelta = m.histogram("rating_delta_points", "Absolute rating change per match", ratingDeltaBuckets)
	m.playersTotal = m.gauge("players_total", "Number of players in the last published ranking")

	m.runsTotal = m.counterVec("runs_total", "Total number of ranking runs by outcome", "status")
	m.runDuration = m.histogram("run_duration_milliseconds", "Duration of a full ranking run in milliseconds", m.histogramBuckets)
	m.lastRunUnix = m.gauge("last_run_unix_seconds", "Unix time of the last successful run")
	m.lastRunMatches = m.gauge("last_run_matches", "Number of matches in the last successful run")

	m.sourceReadLatency = m.histogramVec("source_read_milliseconds", "Match source read latency in milliseconds", "backend")
	m.sinkWriteLatency = m.histogramVec("sink_write_milliseconds", "Ranking sink write latency in milliseconds", "backend")
	m.recordsRead = m.counterVec("source_records_total", "Match records read by backend", "backend")
	m.rowsWritten = m.counterVec("sink_rows_total", "Ranking rows written by backend", "backend")

	m.snapshotsPublished = m.counter("snapshots_published_total", "Number of ranking snapshots published to the repository")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds", "Repository query latency in milliseconds", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordMatchProcessed counts one applied match and observes its rating change.
func RecordMatchProcessed(absDelta float64) {
	globalManager.matchesProcessed.Inc()
	globalManager.ratingDelta.Observe(absDelta)
}

// RecordInvalidRecord counts one rejected match record.
func RecordInvalidRecord() {
	globalManager.invalidRecords.Inc()
}

// UpdatePlayersTotal sets the number of ranked players.
func UpdatePlayersTotal(count int) {
	globalManager.playersTotal.Set(float64(count))
}

// RecordRun records the outcome and duration of a ranking run.
func RecordRun(status string, durationMs float64) {
	globalManager.runsTotal.WithLabelValues(status).Inc()
	globalManager.runDuration.Observe(durationMs)
}

// UpdateLastRun records when the last successful run finished and its size.
func UpdateLastRun(unix float64, matches int) {
	globalManager.lastRunUnix.Set(unix)
	globalManager.lastRunMatches.Set(float64(matches))
}

// RecordSourceRead records a source read for a backend.
func RecordSourceRead(backend string, records int, latencyMs float64) {
	globalManager.recordsRead.WithLabelValues(backend).Add(float64(records))
	globalManager.sourceReadLatency.WithLabelValues(backend).Observe(latencyMs)
}

// RecordSinkWrite records a sink write for a backend.
func RecordSinkWrite(backend string, rows int, latencyMs float64) {
	globalManager.rowsWritten.WithLabelValues(backend).Add(float64(rows))
	globalManager.sinkWriteLatency.WithLabelValues(backend).Observe(latencyMs)
}

// IncrementSnapshotsPublished counts one repository snapshot.
func IncrementSnapshotsPublished() {
	globalManager.snapshotsPublished.Inc()
}

// RecordRepositoryQueryLatency records repository query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records errors by component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
