package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// APIMetrics holds all Prometheus metrics for the API service.
type APIMetrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	LoginsTotal       *prometheus.CounterVec
	QuotaDenialsTotal prometheus.Counter
	RateLimitedTotal  prometheus.Counter
}

// NewAPIMetrics initializes and registers the Prometheus metrics.
func NewAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notes_api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notes_api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notes_api",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Total number of login attempts by outcome.",
		}, []string{"outcome"}), // outcome: success, failure
		QuotaDenialsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "notes_api",
			Subsystem: "quota",
			Name:      "denials_total",
			Help:      "Total number of note creations rejected by the plan quota.",
		}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "notes_api",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		}),
	}
}
