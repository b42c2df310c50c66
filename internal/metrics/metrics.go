// Package metrics defines Prometheus metrics for the knowledge core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agromitra_store_query_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "op"},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agromitra_store_errors_total",
			Help: "Store operation errors by error class",
		},
		[]string{"store", "class"},
	)

	AdvisoryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agromitra_advisory_requests_total",
			Help: "Advisory engine requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FallbackRecommendations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agromitra_crop_fallback_total",
			Help: "Crop recommendations served from the static fallback list",
		},
	)

	EmbeddingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agromitra_embedding_requests_total",
			Help: "Embedding provider calls by outcome",
		},
		[]string{"outcome"},
	)

	EmbeddingBreakerOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agromitra_embedding_breaker_open",
			Help: "1 when the embedding circuit breaker is open",
		},
	)

	ConsistencyWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agromitra_graph_consistency_warnings_total",
			Help: "Asymmetric edges detected in imported dual-write data",
		},
	)
)

func init() {
	prometheus.MustRegister(
		StoreQueryDuration, StoreErrorsTotal,
		AdvisoryRequestsTotal, FallbackRecommendations,
		EmbeddingRequests, EmbeddingBreakerOpen,
		ConsistencyWarnings,
	)
}
