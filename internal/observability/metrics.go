// Package observability provides Prometheus metrics for the ragd pipeline
// and its HTTP API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// BackendBuckets defines histogram buckets for embedding and generation calls,
// ranging from 50ms to the 600s generation timeout.
var BackendBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600}

var (
	// RequestsTotal counts HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragd_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ragd_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: BackendBuckets,
		},
		[]string{"method", "route"},
	)

	// BackendAttemptsTotal counts individual embedding and generation calls by outcome.
	BackendAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragd_backend_attempts_total",
			Help: "Backend call attempts",
		},
		[]string{"backend", "outcome"},
	)

	// BackendRetryWaitSeconds accumulates time spent waiting between attempts.
	BackendRetryWaitSeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragd_backend_retry_wait_seconds_total",
			Help: "Backoff time spent before retrying backend calls",
		},
		[]string{"backend"},
	)

	// BackendLatency records the latency of successful backend calls.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ragd_backend_latency_seconds",
			Help:    "Backend call latency",
			Buckets: BackendBuckets,
		},
		[]string{"backend"},
	)

	// IngestedFilesTotal counts processed files by resulting state (ok, no_text, error).
	IngestedFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragd_ingested_files_total",
			Help: "Files processed by ingestion",
		},
		[]string{"state"},
	)

	// InsertedChunksTotal counts chunks written to the vector store.
	InsertedChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ragd_inserted_chunks_total",
			Help: "Chunks inserted into the vector store",
		},
	)

	// AnswersTotal counts answered questions by outcome.
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragd_answers_total",
			Help: "Questions answered",
		},
		[]string{"outcome"},
	)
)

// Backend label values.
const (
	BackendEmbedding  = "embedding"
	BackendGeneration = "generation"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		BackendAttemptsTotal,
		BackendRetryWaitSeconds,
		BackendLatency,
		IngestedFilesTotal,
		InsertedChunksTotal,
		AnswersTotal,
	)
}
