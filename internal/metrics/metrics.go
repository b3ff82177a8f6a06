// Package metrics exposes Prometheus instruments for report runs and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Row error kinds.
const (
	KindDecode      = "decode"
	KindCorrelation = "correlation"
	KindAddress     = "address"
)

// Metrics holds the report instruments on a dedicated registry.
type Metrics struct {
	registry     *prometheus.Registry
	rows         prometheus.Counter
	rowErrors    *prometheus.CounterVec
	fieldErrors  *prometheus.CounterVec
	runDuration  prometheus.Histogram
	httpRequests *prometheus.CounterVec
}

// New creates the instruments and registers them on a fresh registry along
// with the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payout_report_rows_total",
			Help: "Report rows produced.",
		}),
		rowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_report_row_errors_total",
			Help: "Rows degraded by a row-local failure, by kind.",
		}, []string{"kind"}),
		fieldErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_report_field_errors_total",
			Help: "Fields defaulted after a failed translation or parse, by field.",
		}, []string{"field"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "payout_report_run_duration_seconds",
			Help:    "Duration of report runs.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payout_report_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"path", "status"}),
	}

	m.registry.MustRegister(
		m.rows,
		m.rowErrors,
		m.fieldErrors,
		m.runDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AddRows counts produced rows.
func (m *Metrics) AddRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rows.Add(float64(n))
}

// RowError counts a degraded row of the given kind.
func (m *Metrics) RowError(kind string) {
	if m == nil {
		return
	}
	m.rowErrors.WithLabelValues(kind).Inc()
}

// FieldError counts a field that fell back to its default.
func (m *Metrics) FieldError(field string) {
	if m == nil {
		return
	}
	m.fieldErrors.WithLabelValues(field).Inc()
}

// ObserveRun records the duration of a run.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Observe(d.Seconds())
}

// HTTPRequest counts a served request.
func (m *Metrics) HTTPRequest(path string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}
