// Package monitoring exposes the bot's operational metrics through a
// private prometheus registry.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor collects conversation and interpreter metrics.
type Monitor struct {
	registry *prometheus.Registry

	ordersConfirmed     prometheus.Counter
	ordersCancelled     prometheus.Counter
	ordersRestarted     prometheus.Counter
	interpreterFailures prometheus.Counter
	interpreterDuration prometheus.Histogram
	activeSessions      prometheus.Gauge
}

// NewMonitor creates a monitor with all collectors registered.
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		ordersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_confirmed_total",
			Help: "Orders confirmed and dispatched for submission",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Conversations terminated by a cancellation phrase or option",
		}),
		ordersRestarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_restarted_total",
			Help: "Orders cleared and restarted from the decision step",
		}),
		interpreterFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interpreter_failures_total",
			Help: "Interpretations that fell back to manual review",
		}),
		interpreterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interpreter_duration_seconds",
			Help:    "Latency of completion API interpretation calls",
			Buckets: prometheus.DefBuckets,
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Conversations currently holding state",
		}),
	}

	m.registry.MustRegister(
		m.ordersConfirmed,
		m.ordersCancelled,
		m.ordersRestarted,
		m.interpreterFailures,
		m.interpreterDuration,
		m.activeSessions,
	)
	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OrderConfirmed records a confirmed order.
func (m *Monitor) OrderConfirmed() {
	if m != nil {
		m.ordersConfirmed.Inc()
	}
}

// OrderCancelled records a cancelled conversation.
func (m *Monitor) OrderCancelled() {
	if m != nil {
		m.ordersCancelled.Inc()
	}
}

// OrderRestarted records a restart from the decision step.
func (m *Monitor) OrderRestarted() {
	if m != nil {
		m.ordersRestarted.Inc()
	}
}

// InterpreterFailure records an interpretation that fell back to the
// manual-review record.
func (m *Monitor) InterpreterFailure() {
	if m != nil {
		m.interpreterFailures.Inc()
	}
}

// ObserveInterpretation records the latency of one completion call.
func (m *Monitor) ObserveInterpretation(d time.Duration) {
	if m != nil {
		m.interpreterDuration.Observe(d.Seconds())
	}
}

// SetActiveSessions updates the live session gauge.
func (m *Monitor) SetActiveSessions(n int) {
	if m != nil {
		m.activeSessions.Set(float64(n))
	}
}
