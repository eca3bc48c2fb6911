package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and assistant Prometheus metrics.
var (
	RetrievalVectorCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_vector_calls_total",
			Help:      "Vector search calls by tier and outcome",
		},
		[]string{"tier", "status"},
	)

	RetrievalLexicalFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_lexical_failures_total",
			Help:      "Keyword searches that failed and degraded to no hits",
		},
		[]string{"collection"},
	)

	RetrievalEvidenceItems = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_evidence_items",
			Help:      "Evidence items kept after merging",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	AssistantRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_replies_total",
			Help:      "Assistant replies by intent and outcome",
		},
		[]string{"intent", "outcome"}, // outcome: "answered" / "fallback" / "sizing"
	)

	CompletionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "status"},
	)

	CompletionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_tokens_total",
			Help:      "Chat completion tokens by type",
		},
		[]string{"model", "type"}, // "prompt_estimated" / "prompt" / "completion"
	)

	IngestPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_pages_total",
			Help:      "Ingested pages by outcome",
		},
		[]string{"status"}, // "stored" / "skipped" / "failed"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval, assistant, completion and ingest metrics.
// Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalVectorCallsTotal)
	prometheus.MustRegister(RetrievalLexicalFailuresTotal)
	prometheus.MustRegister(RetrievalEvidenceItems)
	prometheus.MustRegister(AssistantRepliesTotal)
	prometheus.MustRegister(CompletionRequestsTotal)
	prometheus.MustRegister(CompletionTokensTotal)
	prometheus.MustRegister(IngestPagesTotal)
	retrievalMetricsRegistered = true
}
