package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several controllers (or tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Controller metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	ManagedApps     prometheus.Gauge
	Observers       *prometheus.GaugeVec
	Notifications   *prometheus.CounterVec

	// Collaborator metrics
	Spawns          *prometheus.CounterVec
	PersistFailures prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_commands_total",
				Help: "Commands processed by the app handler, by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcher_command_duration_seconds",
				Help:    "Time the controller spent on one command, including notification",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		ManagedApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_managed_apps",
				Help: "Number of apps in the registry",
			},
		),
		Observers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "launcher_observers",
				Help: "Registered observer handles per category",
			},
			[]string{"category"},
		),
		Notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_notifications_total",
				Help: "Observer notifications by category and outcome",
			},
			[]string{"category", "outcome"},
		),

		Spawns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_spawns_total",
				Help: "Process spawn attempts by outcome",
			},
			[]string{"outcome"},
		),
		PersistFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "launcher_persist_failures_total",
				Help: "Registry snapshots the config store failed to persist",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_ws_connections",
				Help: "Number of active observer stream connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "launcher_uptime_seconds",
			Help: "Launcher uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand records one processed command
func (m *Metrics) RecordCommand(kind, status string, duration time.Duration) {
	m.Commands.WithLabelValues(kind, status).Inc()
	m.CommandDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetManagedApps sets the registry size
func (m *Metrics) SetManagedApps(count int) {
	m.ManagedApps.Set(float64(count))
}

// SetObservers sets the number of handles in a category
func (m *Metrics) SetObservers(category string, count int) {
	m.Observers.WithLabelValues(category).Set(float64(count))
}

// RecordNotification records one delivery attempt
func (m *Metrics) RecordNotification(category, outcome string) {
	m.Notifications.WithLabelValues(category, outcome).Inc()
}

// RecordSpawn records a process spawn attempt
func (m *Metrics) RecordSpawn(outcome string) {
	m.Spawns.WithLabelValues(outcome).Inc()
}

// IncPersistFailures counts a failed snapshot write
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
