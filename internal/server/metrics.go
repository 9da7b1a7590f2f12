package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the picker's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	selections   *prometheus.CounterVec
	submits      *prometheus.CounterVec
	reloads      *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_selector_selections_total",
			Help: "Provider selections by provider id and whether they came from the cookie",
		}, []string{"provider", "restore"}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_selector_submits_total",
			Help: "Submit interceptor decisions",
		}, []string{"outcome"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_selector_provider_reloads_total",
			Help: "Provider file reloads by result",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openid_selector_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openid_selector_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.selections,
		m.submits,
		m.reloads,
		m.httpRequests,
		m.httpDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSelection counts a provider selection
func (m *Metrics) RecordSelection(providerID string, restore bool) {
	if m == nil {
		return
	}
	m.selections.WithLabelValues(providerID, strconv.FormatBool(restore)).Inc()
}

// RecordSubmit counts an interceptor decision
func (m *Metrics) RecordSubmit(outcome string) {
	if m == nil {
		return
	}
	m.submits.WithLabelValues(outcome).Inc()
}

// RecordReload counts a provider file reload; err nil means success
func (m *Metrics) RecordReload(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}

// NewMetricsMiddleware records request counts and latency per chi route
// pattern, falling back to "unmatched" so ids in paths never become labels
func NewMetricsMiddleware(m *Metrics) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			method := strings.ToUpper(r.Method)
			m.httpRequests.WithLabelValues(method, route, strconv.Itoa(wrapped.Status())).Inc()
			m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		})
	}
}
