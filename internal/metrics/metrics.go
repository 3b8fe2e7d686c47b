// Package metrics exposes Prometheus collectors for the tracker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "domtracker"

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the tracker's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
	registrations *prometheus.CounterVec
	starts        *prometheus.CounterVec
	turnAdvances  prometheus.Counter
	wsConnections prometheus.Gauge
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gamehost_fetches_total",
			Help:      "Snapshot fetches from game hosts by result",
		}, []string{"result"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gamehost_fetch_seconds",
			Help:      "Snapshot fetch latency",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Nation registrations by server state",
		}, []string{"kind"}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_starts_total",
			Help:      "Lobby start attempts by result",
		}, []string{"result"}),
		turnAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_advances_total",
			Help:      "Turn changes observed on started servers",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open WebSocket connections",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches,
		m.fetchLatency,
		m.registrations,
		m.starts,
		m.turnAdvances,
		m.wsConnections,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveFetch records one game host fetch.
func (m *Metrics) ObserveFetch(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result(err)).Inc()
	m.fetchLatency.Observe(d.Seconds())
}

// IncRegistrations counts a registration against a server of the given kind.
func (m *Metrics) IncRegistrations(kind string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(kind).Inc()
}

// ObserveStart counts a start attempt.
func (m *Metrics) ObserveStart(err error) {
	if m == nil {
		return
	}
	m.starts.WithLabelValues(result(err)).Inc()
}

// IncTurnAdvances counts an observed turn change.
func (m *Metrics) IncTurnAdvances() {
	if m == nil {
		return
	}
	m.turnAdvances.Inc()
}

// IncConnections counts an opened WebSocket connection.
func (m *Metrics) IncConnections() {
	if m == nil {
		return
	}
	m.wsConnections.Inc()
}

// DecConnections counts a closed WebSocket connection.
func (m *Metrics) DecConnections() {
	if m == nil {
		return
	}
	m.wsConnections.Dec()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
