package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequests counts outbound provider calls by outcome (ok, http_error, transport_error).
	UpstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Outbound requests to data providers.",
	}, []string{"provider", "outcome"})

	// UpstreamLatency observes outbound provider call duration.
	UpstreamLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of outbound requests to data providers.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// MissingFields counts upstream records that lacked an expected field.
	MissingFields = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_missing_fields_total",
		Help: "Upstream records with a missing field replaced by a default.",
	}, []string{"provider", "field"})

	// DashboardFallbacks counts dashboard sources that degraded to their fallback.
	DashboardFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_fallbacks_total",
		Help: "Dashboard data sources served from their fallback.",
	}, []string{"source"})

	// HTTPRequests counts handled API requests.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "route", "status"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers every collector with the default registry. Safe to call twice.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequests, UpstreamLatency, MissingFields, DashboardFallbacks, HTTPRequests)
	})
}
