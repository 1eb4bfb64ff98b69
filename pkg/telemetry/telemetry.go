// Package telemetry exposes Prometheus instrumentation for tool dispatch.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instruments recorded during tool execution.
type Metrics struct {
	registry *prometheus.Registry

	executions  *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	activeCalls prometheus.Gauge
}

// NewMetrics creates a metrics set on its own registry. Using a dedicated
// registry keeps test instances isolated from each other.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsw",
			Name:      "tool_executions_total",
			Help:      "Tool executions by tool name and status.",
		}, []string{"tool", "status"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsw",
			Name:      "fallback_activations_total",
			Help:      "Fallback mechanism activations by tool name and mechanism.",
		}, []string{"tool", "mechanism"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lsw",
			Name:      "tool_duration_seconds",
			Help:      "Tool execution latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		activeCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lsw",
			Name:      "active_tool_calls",
			Help:      "Tool calls currently in flight.",
		}),
	}
}

// RecordExecution records a completed tool call.
func (m *Metrics) RecordExecution(tool, status string, elapsed time.Duration) {
	m.executions.WithLabelValues(tool, status).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// RecordFallback records a fallback mechanism producing the result for a tool.
func (m *Metrics) RecordFallback(tool, mechanism string) {
	m.fallbacks.WithLabelValues(tool, mechanism).Inc()
}

// CallStarted marks a tool call as in flight. The returned function marks it
// finished.
func (m *Metrics) CallStarted() func() {
	m.activeCalls.Inc()
	return m.activeCalls.Dec
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
