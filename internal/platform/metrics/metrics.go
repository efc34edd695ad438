package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores Prometheus del servicio.
// Todos los métodos aceptan receptor nil (tests y binarios sin /metrics).
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	LiveSessionsActive  prometheus.Gauge
	LiveSessionsTotal   *prometheus.CounterVec
	LiveSessionDuration prometheus.Histogram

	ToolCallsTotal *prometheus.CounterVec
	PersistTotal   *prometheus.CounterVec
	AlertsRaised   *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "caregiver"
	}

	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route"},
	)

	liveSessionsActive := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions_active",
			Help:      "Number of active voice sessions",
		},
	)

	liveSessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_sessions_total",
			Help:      "Total number of voice sessions by outcome",
		},
		[]string{"status"},
	)

	liveSessionDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "live_session_duration_seconds",
			Help:      "Voice session duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	toolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Assistant tool calls by name and result",
		},
		[]string{"tool", "result"},
	)

	persistTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_commands_total",
			Help:      "Assistant mutations persisted by kind and phase",
		},
		[]string{"kind", "phase"},
	)

	alertsRaised := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_raised_total",
			Help:      "Alerts raised by severity",
		},
		[]string{"severity"},
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		liveSessionsActive,
		liveSessionsTotal,
		liveSessionDuration,
		toolCallsTotal,
		persistTotal,
		alertsRaised,
	)

	return &Metrics{
		registry:            registry,
		RequestsTotal:       requestsTotal,
		RequestDuration:     requestDuration,
		LiveSessionsActive:  liveSessionsActive,
		LiveSessionsTotal:   liveSessionsTotal,
		LiveSessionDuration: liveSessionDuration,
		ToolCallsTotal:      toolCallsTotal,
		PersistTotal:        persistTotal,
		AlertsRaised:        alertsRaised,
	}
}

// Handler expone el registry para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) RecordLiveSessionStart() {
	if m == nil {
		return
	}
	m.LiveSessionsActive.Inc()
}

func (m *Metrics) RecordLiveSessionEnd(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.LiveSessionsActive.Dec()
	m.LiveSessionsTotal.WithLabelValues(status).Inc()
	m.LiveSessionDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordToolCall(tool string, success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "failed"
	}
	m.ToolCallsTotal.WithLabelValues(tool, result).Inc()
}

func (m *Metrics) RecordPersist(kind, phase string) {
	if m == nil {
		return
	}
	m.PersistTotal.WithLabelValues(kind, phase).Inc()
}

func (m *Metrics) RecordAlert(severity string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(severity).Inc()
}
