// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "travel_cache_entries",
			Help: "Current number of response cache entries",
		},
	)

	AccountFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_account_fetch_total",
			Help: "Per-account invoice export calls by outcome (ok, error)",
		},
		[]string{"outcome"},
	)

	AccountFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_account_fetch_duration_seconds",
			Help:    "Duration of a single per-account invoice export call",
			Buckets: prometheus.DefBuckets,
		},
	)

	NameLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_name_lookup_total",
			Help: "Batched name lookups by outcome (ok, error, skipped)",
		},
		[]string{"outcome"},
	)

	FunctionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_function_requests_total",
			Help: "Data-access function calls by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "travel_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
