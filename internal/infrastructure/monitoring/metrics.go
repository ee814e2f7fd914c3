package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation statuses
const (
	StatusOK    = "success"
	StatusError = "error"
)

// Action outcomes
const (
	OutcomeChanged = "changed"
	OutcomeNoop    = "noop"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Host operation metrics
	OperationCalls    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ActionOutcomes    *prometheus.CounterVec
	SkippedProcesses  *prometheus.CounterVec

	// Streaming metrics
	StreamsActive prometheus.Gauge
	StreamLines   prometheus.Counter

	startTime time.Time
}

// NewMetrics creates a metrics collector on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostagent_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostagent_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostagent_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 8, 6),
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostagent_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 8, 8),
			},
			[]string{"method", "path"},
		),

		OperationCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostagent_operations_total",
				Help: "Total number of host operations",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hostagent_operation_duration_seconds",
				Help:    "Host operation duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operation"},
		),
		ActionOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostagent_file_actions_total",
				Help: "File actions by outcome",
			},
			[]string{"action", "outcome"},
		),
		SkippedProcesses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostagent_processes_skipped_total",
				Help: "Process records dropped from listings, by error kind",
			},
			[]string{"kind"},
		),

		StreamsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostagent_streams_active",
				Help: "Number of open line streams",
			},
		),
		StreamLines: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hostagent_stream_lines_total",
				Help: "Total number of lines sent over streams",
			},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hostagent_uptime_seconds",
			Help: "Agent uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

// RecordOperation records one host operation
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationCalls.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAction records the outcome of a file action
func (m *Metrics) RecordAction(action, outcome string) {
	m.ActionOutcomes.WithLabelValues(action, outcome).Inc()
}

// RecordSkippedProcess counts a process record dropped from a listing
func (m *Metrics) RecordSkippedProcess(kind string) {
	m.SkippedProcesses.WithLabelValues(kind).Inc()
}

// StreamOpened marks a line stream as open
func (m *Metrics) StreamOpened() {
	m.StreamsActive.Inc()
}

// StreamClosed marks a line stream as closed
func (m *Metrics) StreamClosed() {
	m.StreamsActive.Dec()
}

// AddStreamLines counts lines sent over a stream
func (m *Metrics) AddStreamLines(n int) {
	m.StreamLines.Add(float64(n))
}
