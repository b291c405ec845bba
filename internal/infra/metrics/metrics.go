// Package metrics exposes prometheus collectors for the API client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts physical requests sent to the backend
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_http_requests_total",
			Help: "Total number of HTTP requests sent to the storefront API",
		},
		[]string{"method", "status"},
	)

	// HTTPLatency tracks request latency including retries
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topup_http_latency_seconds",
			Help:    "Storefront API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// RetriesTotal counts resends, by reason (network, auth)
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_http_retries_total",
			Help: "Total number of request resends",
		},
		[]string{"reason"},
	)

	// TokenRefreshTotal counts refresh attempts by result
	TokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_token_refresh_total",
			Help: "Total number of access token refresh attempts",
		},
		[]string{"result"},
	)

	// CacheOpsTotal counts cache hits, misses and evictions
	CacheOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_cache_operations_total",
			Help: "Service cache operations",
		},
		[]string{"op"},
	)

	// CacheEntries is the number of physically present cache entries
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "topup_cache_entries",
			Help: "Entries currently held by the service cache",
		},
	)

	// BatchOperationsTotal counts batch operations by result
	BatchOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "topup_batch_operations_total",
			Help: "Operations executed by the batch manager",
		},
		[]string{"result"},
	)
)
