// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventconnect"

// Reasons a joined row is rejected by a repository.
const (
	ReasonNullJoin     = "null_join"
	ReasonMissingField = "missing_field"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rowsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "rows_rejected_total",
			Help:      "Joined rows excluded from results because they could not be decoded",
		},
		[]string{"table", "reason"},
	)

	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Live sign-ins, recounted from the store on every sweep",
		},
	)
)

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// RowRejected counts a row dropped from a result set.
func RowRejected(table, reason string) {
	rowsRejected.WithLabelValues(table, reason).Inc()
}

// RowsRejected returns the counter for table and reason.
func RowsRejected(table, reason string) prometheus.Counter {
	return rowsRejected.WithLabelValues(table, reason)
}

// Registration counts a registration attempt with the given outcome.
func Registration(outcome string) {
	registrations.WithLabelValues(outcome).Inc()
}

// SessionStarted increments the active sessions gauge.
func SessionStarted() { activeSessions.Inc() }

// SessionEnded decrements the active sessions gauge.
func SessionEnded() { activeSessions.Dec() }

// SetActiveSessions resets the active sessions gauge to a stored count.
func SetActiveSessions(n int64) { activeSessions.Set(float64(n)) }

// ActiveSessions returns the active sessions gauge.
func ActiveSessions() prometheus.Gauge { return activeSessions }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
