// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business metrics
	interpretations   *prometheus.CounterVec
	interpretDuration prometheus.Histogram
	cascadeAttempts   *prometheus.CounterVec
	upstreamCalls     *prometheus.CounterVec
	upstreamDuration  *prometheus.HistogramVec
	interactions      *prometheus.CounterVec
}

// NewMetricsCollector registers every metric on a private registry, plus
// the Go runtime and process collectors.
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		interpretations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savvy_query_interpretations_total",
				Help: "Query interpretations by outcome",
			},
			[]string{"outcome"},
		),
		interpretDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "savvy_query_interpretation_duration_seconds",
				Help:    "Time spent generating and parsing structured queries",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		cascadeAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savvy_recommendation_attempts_total",
				Help: "Recommendation search attempts by step and outcome",
			},
			[]string{"step", "outcome"},
		),
		upstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savvy_upstream_requests_total",
				Help: "Calls to third-party services",
			},
			[]string{"service", "operation", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "savvy_upstream_request_duration_seconds",
				Help:    "Latency of third-party calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "savvy_interactions_total",
				Help: "Recorded recipe interactions by type",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.interpretations,
		m.interpretDuration,
		m.cascadeAttempts,
		m.upstreamCalls,
		m.upstreamDuration,
		m.interactions,
	)
	return m
}

var _ outbound.Metrics = (*MetricsCollector)(nil)

// ObserveInterpretation records one query interpreter call
func (m *MetricsCollector) ObserveInterpretation(outcome string, duration time.Duration) {
	m.interpretations.WithLabelValues(outcome).Inc()
	m.interpretDuration.Observe(duration.Seconds())
}

// ObserveCascadeAttempt records one recommendation search step
func (m *MetricsCollector) ObserveCascadeAttempt(step, outcome string) {
	m.cascadeAttempts.WithLabelValues(step, outcome).Inc()
}

// ObserveUpstreamCall records one third-party call
func (m *MetricsCollector) ObserveUpstreamCall(service, operation, status string, duration time.Duration) {
	m.upstreamCalls.WithLabelValues(service, operation, status).Inc()
	m.upstreamDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// ObserveInteraction counts a recorded interaction
func (m *MetricsCollector) ObserveInteraction(kind string) {
	m.interactions.WithLabelValues(kind).Inc()
}

// ObserveHTTPRequest records one served request. route is the matched
// pattern, never the raw path.
func (m *MetricsCollector) ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry exposes the registry for tests
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
