// Package observability exposes Prometheus metrics for the HTTP API and the report
// pipeline. Every method is safe on a nil *Metrics, which records nothing.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the application's Prometheus metrics on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportBuilds    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics creates the registry and registers every collector
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dailysales_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dailysales_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	builds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dailysales_report_build_duration_seconds",
		Help:    "Time spent loading a snapshot and computing a report.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dailysales_report_cache_lookups_total",
		Help: "Report cache lookups by outcome.",
	}, []string{"result"})

	registry.MustRegister(requests, duration, builds, lookups)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		reportBuilds:    builds,
		cacheLookups:    lookups,
	}
}

// Handler returns the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and duration of every request under its route pattern
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveReportBuild records how long computing a report took
func (m *Metrics) ObserveReportBuild(report string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportBuilds.WithLabelValues(report).Observe(duration.Seconds())
}

// RecordCacheLookup counts one report cache lookup by outcome (hit, miss or error)
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Registerer exposes the registry for additional collectors
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}
