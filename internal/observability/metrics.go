// Package observability wires Prometheus metrics for the HTTP server and the quote workflow.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Quote workflow events counted by QuoteEvent.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventShared    = "shared"
	EventSigned    = "signed"
	EventPaid      = "paid"
	EventPDFFailed = "pdf_failed"
)

// Metrics owns a private registry and the application collectors.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quoteEvents     *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics builds the registry and registers every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devisflow_http_requests_total",
		Help: "HTTP requests by route pattern and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devisflow_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devisflow_quote_events_total",
		Help: "Quote lifecycle events.",
	}, []string{"event"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "devisflow_cache_lookups_total",
		Help: "Read-model cache lookups by cache and result.",
	}, []string{"cache", "result"})
	registry.MustRegister(requests, duration, events, lookups)

	for _, e := range []string{EventCreated, EventUpdated, EventShared, EventSigned, EventPaid, EventPDFFailed} {
		events.WithLabelValues(e)
	}
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		quoteEvents:     events,
		cacheLookups:    lookups,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency of every request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// QuoteEvent counts one quote lifecycle event.
func (m *Metrics) QuoteEvent(event string) {
	if m == nil {
		return
	}
	m.quoteEvents.WithLabelValues(event).Inc()
}

// CacheLookup counts a hit or miss on the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
