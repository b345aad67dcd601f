// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the clinicdesk server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LatencyBuckets covers in-process lookups (milliseconds) up to slow
// upstream embedding and chat calls (tens of seconds).
var LatencyBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicdesk_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LatencyBuckets,
		},
		[]string{"method", "route"},
	)

	// EmbeddingRequestsTotal counts embedding batches by provider and outcome
	// ("ok", "degraded").
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_embedding_requests_total",
			Help: "Embedding requests",
		},
		[]string{"provider", "status"},
	)

	// EmbeddingLatency records embedding batch latency in seconds.
	EmbeddingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicdesk_embedding_latency_seconds",
			Help:    "Embedding latency",
			Buckets: LatencyBuckets,
		},
		[]string{"provider"},
	)

	// EmbeddingFallbacksTotal counts fallbacks to deterministic embeddings
	// by failure class ("transient", "permanent").
	EmbeddingFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_embedding_fallbacks_total",
			Help: "Embedding fallbacks to the deterministic provider",
		},
		[]string{"class"},
	)

	// FAQQueriesTotal counts FAQ answers by outcome ("answered", "empty", "error").
	FAQQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_faq_queries_total",
			Help: "FAQ queries",
		},
		[]string{"outcome"},
	)

	// FAQDocuments reports the number of documents in the loaded FAQ index.
	FAQDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "clinicdesk_faq_documents",
			Help: "Documents in the FAQ index",
		},
	)

	// IntentsTotal counts routed chat messages by detected intent.
	IntentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_intents_total",
			Help: "Chat messages by intent",
		},
		[]string{"intent"},
	)

	// ResponderFallbacksTotal counts LLM replies replaced by canned replies.
	ResponderFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "clinicdesk_responder_fallbacks_total",
			Help: "LLM replies replaced by canned replies",
		},
	)

	// BookingsTotal counts bookings by appointment type.
	BookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicdesk_bookings_total",
			Help: "Bookings issued",
		},
		[]string{"appointment_type"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		EmbeddingRequestsTotal,
		EmbeddingLatency,
		EmbeddingFallbacksTotal,
		FAQQueriesTotal,
		FAQDocuments,
		IntentsTotal,
		ResponderFallbacksTotal,
		BookingsTotal,
	)
}
