// Package metrics exposes Prometheus instruments for the booking service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "artistbook"

// Manager owns a dedicated registry and every instrument registered on it.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	runtimeMetrics   bool
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	serviceOperations   *prometheus.CounterVec
	slotConflicts       prometheus.Counter
	eventsPublished     *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the request duration buckets in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRuntimeMetrics registers the Go runtime and process collectors.
func WithRuntimeMetrics(enabled bool) Option {
	return func(m *Manager) {
		m.runtimeMetrics = enabled
	}
}

// NewManager creates a Manager on a fresh registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.runtimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})

	m.serviceOperations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "service_operations_total",
		Help:      "Total number of service operations by outcome",
	}, []string{"service", "operation", "outcome"})

	m.slotConflicts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "slot_conflicts_total",
		Help:      "Total number of availability slot writes rejected for overlapping another slot",
	})

	m.eventsPublished = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "events_published_total",
		Help:      "Total number of booking events handed to the event bus by result",
	}, []string{"type", "result"})

	return m
}

// Registry returns the registry holding the instruments.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordOperation counts one service operation.
func (m *Manager) RecordOperation(service, operation, outcome string) {
	m.serviceOperations.WithLabelValues(service, operation, outcome).Inc()
}

// RecordSlotConflict counts one rejected overlapping slot.
func (m *Manager) RecordSlotConflict() {
	m.slotConflicts.Inc()
}

// RecordEventPublished counts one publish attempt.
func (m *Manager) RecordEventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, result).Inc()
}

// ObserveHTTPRequest records one completed request. route is the matched
// pattern, never the raw path, to keep label cardinality bounded.
func (m *Manager) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
