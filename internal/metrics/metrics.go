package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndc_http_requests_total",
			Help: "HTTP requests by route template, method and status code",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ndc_http_request_duration_seconds",
			Help:    "HTTP request latency by route template",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ChatQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndc_chat_queries_total",
			Help: "Chat questions by classified query type",
		},
		[]string{"query_type"},
	)

	ChatFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndc_chat_failures_total",
			Help: "Failed chat questions by error code",
		},
		[]string{"error_code"},
	)

	ContextImplementations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ndc_chat_context_implementations",
			Help:    "Implementation rows sent to the model per question",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 25, 50, 100},
		},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ndc_ai_request_duration_seconds",
			Help:    "Completion API call latency including retries",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"outcome"},
	)

	CatalogEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndc_catalog_events_total",
			Help: "catalog.changed events by entity and publish result",
		},
		[]string{"entity", "result"},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ndc_response_cache_total",
			Help: "Response cache lookups by result (hit, miss, bypass)",
		},
		[]string{"result"},
	)
)
