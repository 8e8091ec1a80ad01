// File: internal/metrics/manager.go
package metrics

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager owns the relay's Prometheus metrics and the process-level gauges
// behind them. The HTTP server drives it from a periodic updater goroutine.
type Manager struct {
	prometheus *PrometheusMetrics
	logger     *logrus.Entry
	startTime  time.Time
}

// NewManager creates the metrics manager. Uptime is measured from here.
func NewManager() *Manager {
	return &Manager{
		prometheus: NewPrometheusMetrics(),
		logger:     logrus.WithField("component", "metrics"),
		startTime:  time.Now(),
	}
}

// GetPrometheusMetrics returns the Prometheus metrics instance
func (m *Manager) GetPrometheusMetrics() *PrometheusMetrics {
	return m.prometheus
}

// UpdateSystemMetrics refreshes the memory, goroutine and uptime gauges
func (m *Manager) UpdateSystemMetrics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.prometheus.UpdateMemoryUsage(memStats.Alloc)
	m.prometheus.UpdateGoroutineCount(runtime.NumGoroutine())
	m.prometheus.UpdateApplicationUptime(m.startTime)
}

// UpdateRelayHealth records the relay pipeline's health gauge
func (m *Manager) UpdateRelayHealth(healthy bool) {
	m.prometheus.UpdateComponentHealth("relay", healthy)
}
