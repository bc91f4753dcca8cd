// Package metrics публикует метрики конвейера обновлений и HTTP API в Prometheus.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dreschagin/megalith-dashboard/internal/domain/valueobject"
)

const namespace = "megalith_dashboard"

// Metrics bundles prometheus collectors used by the dashboard.
// Реализует port.PipelineMetrics.
type Metrics struct {
	EventsDispatched   *prometheus.CounterVec
	EventsDropped      *prometheus.CounterVec
	TransportState     *prometheus.GaugeVec
	TransportChanges   *prometheus.CounterVec
	IntentsRecorded    *prometheus.CounterVec
	RequestsTotal      *prometheus.CounterVec
	RequestDurationSec *prometheus.HistogramVec
}

func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Total number of update events dispatched to handlers.",
		}, []string{"kind"}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of inbound messages dropped before dispatch.",
		}, []string{"reason"}),
		TransportState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transport_state",
			Help:      "Current update transport state (1 for the active state).",
		}, []string{"state"}),
		TransportChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_transitions_total",
			Help:      "Total number of transport state transitions by target state.",
		}, []string{"state"}),
		IntentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_recorded_total",
			Help:      "Total number of automated response intents recorded.",
		}, []string{"action"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		RequestDurationSec: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	registry.MustRegister(
		m.EventsDispatched,
		m.EventsDropped,
		m.TransportState,
		m.TransportChanges,
		m.IntentsRecorded,
		m.RequestsTotal,
		m.RequestDurationSec,
	)

	return m
}

// RegisterClientGauge публикует число подключенных браузерных дашбордов
func (m *Metrics) RegisterClientGauge(registry prometheus.Registerer, count func() int) {
	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hub_clients",
		Help:      "Number of connected dashboard clients.",
	}, func() float64 { return float64(count()) }))
}

func (m *Metrics) EventDispatched(kind string) {
	m.EventsDispatched.WithLabelValues(kind).Inc()
}

func (m *Metrics) EventDropped(reason string) {
	m.EventsDropped.WithLabelValues(reason).Inc()
}

// TransportStateChanged выставляет 1 для нового состояния и 0 для остальных
func (m *Metrics) TransportStateChanged(state valueobject.TransportState) {
	for _, s := range []valueobject.TransportState{
		valueobject.TransportUninitialized,
		valueobject.TransportConnected,
		valueobject.TransportPolling,
		valueobject.TransportClosed,
	} {
		value := 0.0
		if s == state {
			value = 1
		}
		m.TransportState.WithLabelValues(s.String()).Set(value)
	}
	m.TransportChanges.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) IntentRecorded(action valueobject.ResponseAction) {
	m.IntentsRecorded.WithLabelValues(action.String()).Inc()
}

func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		route := normalizeRoute(r.URL.Path)
		m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
		m.RequestDurationSec.WithLabelValues(route, r.Method, status).Observe(time.Since(startedAt).Seconds())
	})
}

// normalizeRoute ограничивает кардинальность label route
func normalizeRoute(path string) string {
	switch {
	case path == "/ws", path == "/metrics", path == "/healthz", path == "/readyz":
		return path
	case path == "/api/v1/export" || strings.HasPrefix(path, "/api/v1/export/"):
		return "/api/v1/export/*"
	case path == "/api/v1" || strings.HasPrefix(path, "/api/v1/"):
		return "/api/v1/*"
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack passes websocket upgrades through wrapped ResponseWriter.
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}

// Flush keeps streaming behavior for handlers that require it.
func (rw *statusRecorder) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
