package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics contains all Prometheus metrics for the relay
type PrometheusMetrics struct {
	// Webhook intake metrics
	WebhooksReceivedTotal *prometheus.CounterVec
	AuthFailuresTotal     prometheus.Counter

	// Dispatch metrics
	DispatchesTotal  *prometheus.CounterVec
	DispatchDuration prometheus.Histogram

	// API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Application health metrics
	ApplicationUptime prometheus.Gauge
	ComponentHealth   *prometheus.GaugeVec
	MemoryUsage       prometheus.Gauge
	GoroutineCount    prometheus.Gauge
}

// NewPrometheusMetrics creates and registers all Prometheus metrics
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		WebhooksReceivedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_webhooks_received_total",
				Help: "Total number of webhook requests received",
			},
			[]string{"outcome"},
		),

		AuthFailuresTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "relay_auth_failures_total",
				Help: "Total number of webhook requests rejected for a bad token",
			},
		),

		DispatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_dispatches_total",
				Help: "Total number of Telegram dispatches by outcome",
			},
			[]string{"outcome"},
		),

		DispatchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relay_dispatch_duration_seconds",
				Help:    "Duration of Telegram sendMessage calls",
				Buckets: prometheus.DefBuckets,
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_http_requests_total",
				Help: "Total number of HTTP requests received",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ApplicationUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_application_uptime_seconds",
				Help: "Application uptime in seconds",
			},
		),

		ComponentHealth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "relay_component_health",
				Help: "Health status of application components (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),

		MemoryUsage: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_memory_usage_bytes",
				Help: "Current memory usage in bytes",
			},
		),

		GoroutineCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "relay_goroutines",
				Help: "Number of running goroutines",
			},
		),
	}
}

// RecordWebhookReceived records an inbound webhook request
func (m *PrometheusMetrics) RecordWebhookReceived(outcome string) {
	m.WebhooksReceivedTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthFailure records a rejected webhook token
func (m *PrometheusMetrics) RecordAuthFailure() {
	m.AuthFailuresTotal.Inc()
}

// RecordDispatch records a Telegram dispatch outcome
func (m *PrometheusMetrics) RecordDispatch(outcome string, duration time.Duration) {
	m.DispatchesTotal.WithLabelValues(outcome).Inc()
	m.DispatchDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request
func (m *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// UpdateApplicationUptime updates the application uptime metric
func (m *PrometheusMetrics) UpdateApplicationUptime(startTime time.Time) {
	m.ApplicationUptime.Set(time.Since(startTime).Seconds())
}

// UpdateComponentHealth updates the health status of a component
func (m *PrometheusMetrics) UpdateComponentHealth(component string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	m.ComponentHealth.WithLabelValues(component).Set(value)
}

// UpdateMemoryUsage updates the memory usage metric
func (m *PrometheusMetrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

// UpdateGoroutineCount updates the goroutine count metric
func (m *PrometheusMetrics) UpdateGoroutineCount(count int) {
	m.GoroutineCount.Set(float64(count))
}
