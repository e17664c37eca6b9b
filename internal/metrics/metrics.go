// Package metrics exposes the Prometheus collectors of the hub.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "knowledge_hub"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	logins           *prometheus.CounterVec
	sessionsIssued   prometheus.Counter
	sessionsResolved *prometheus.CounterVec
	edgeRedirects    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_issued_total",
			Help:      "Sessions created at login.",
		}),
		sessionsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_resolved_total",
			Help:      "Session lookups by outcome.",
		}, []string{"outcome"}),
		edgeRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edge_redirects_total",
			Help:      "Redirects issued by the edge filter by reason.",
		}, []string{"reason"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.logins, m.sessionsIssued, m.sessionsResolved, m.edgeRedirects, m.requestDuration)
	return m
}

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionIssued() {
	if m == nil {
		return
	}
	m.sessionsIssued.Inc()
}

func (m *Metrics) SessionResolved(outcome string) {
	if m == nil {
		return
	}
	m.sessionsResolved.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EdgeRedirect(reason string) {
	if m == nil {
		return
	}
	m.edgeRedirects.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
