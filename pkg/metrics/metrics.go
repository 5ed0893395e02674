package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_fetch_total",
			Help: "List refresh attempts by category and result.",
		},
		[]string{"category", "result"}, // result: success, fetch_failed, extraction_failed
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roleta_fetch_duration_seconds",
			Help:    "Duration of list refreshes.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"category"},
	)

	ExtractionStrategyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_extraction_strategy_total",
			Help: "Which extraction strategy matched a list page.",
		},
		[]string{"strategy"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_cache_lookups_total",
			Help: "List cache lookups by origin of the served list.",
		},
		[]string{"category", "origin"},
	)

	SpinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleta_spins_total",
			Help: "Spins by outcome.",
		},
		[]string{"outcome"}, // lost, survived, unavailable
	)
)
