// Package metrics exposes Prometheus instrumentation for the dashboard.
//
// All recording methods are safe on a nil *Metrics, so callers and tests can
// run without a registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datadash"

// Metrics holds the dashboard's collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	uploads        *prometheus.CounterVec
	uploadBytes    prometheus.Histogram
	ingestAttempts *prometheus.CounterVec
	coercions      *prometheus.CounterVec
	charts         *prometheus.HistogramVec
	sessions       prometheus.Gauge
	sessionsSwept  prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Uploaded files by format and outcome.",
		}, []string{"format", "outcome"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		ingestAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_attempts_total",
			Help:      "Candidate encoding attempts by encoding and result.",
		}, []string{"encoding", "result"}),
		coercions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coercions_total",
			Help:      "Column type conversions by target type and outcome.",
		}, []string{"target", "outcome"}),
		charts: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_seconds",
			Help:      "Time to prepare and render a chart.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions removed by the janitor after expiring.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.uploads, m.uploadBytes, m.ingestAttempts, m.coercions, m.charts,
		m.sessions, m.sessionsSwept, m.httpRequests, m.httpDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Upload records an upload attempt and, when accepted, its size.
func (m *Metrics) Upload(format string, size int64, ok bool) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(format, outcome(ok)).Inc()
	if ok {
		m.uploadBytes.Observe(float64(size))
	}
}

// IngestAttempt records one candidate encoding attempt. result is one of
// success, warning or error.
func (m *Metrics) IngestAttempt(encoding, result string) {
	if m == nil {
		return
	}
	m.ingestAttempts.WithLabelValues(encoding, result).Inc()
}

// Coercion records a column type conversion.
func (m *Metrics) Coercion(target string, ok bool) {
	if m == nil {
		return
	}
	m.coercions.WithLabelValues(target, outcome(ok)).Inc()
}

// Chart records chart preparation and rendering time. outcome is ok, info or error.
func (m *Metrics) Chart(kind, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.charts.WithLabelValues(kind, result).Observe(d.Seconds())
}

// Sessions sets the number of live sessions.
func (m *Metrics) Sessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// SessionsExpired counts sessions removed by the janitor.
func (m *Metrics) SessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

// HTTPRequest records one served request.
func (m *Metrics) HTTPRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
