package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	scoringRequestsTotal  *prometheus.CounterVec
	scoringLatencySeconds *prometheus.HistogramVec
	cacheLookupsTotal     *prometheus.CounterVec
	asyncJobsTotal        *prometheus.CounterVec
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the scoring
// service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		scoringRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_requests_total",
			Help: "Total number of scoring requests by task type, provider, and outcome.",
		}, []string{"task_type", "provider", "outcome"})

		scoringLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoring_latency_seconds",
			Help:    "Latency distribution for freshly computed scoring requests.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"task_type"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_cache_lookups_total",
			Help: "Result cache lookups by result (hit or miss).",
		}, []string{"result"})

		asyncJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_async_jobs_total",
			Help: "Async scoring job state transitions by status.",
		}, []string{"status"})

		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of scoring API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for scoring API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned by scoring endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			scoringRequestsTotal,
			scoringLatencySeconds,
			cacheLookupsTotal,
			asyncJobsTotal,
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
		)
	})
}

// ScoringRequests exposes the counter for scoring outcomes.
func ScoringRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return scoringRequestsTotal
}

// ScoringLatency exposes the latency histogram for fresh scoring runs.
func ScoringLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return scoringLatencySeconds
}

// CacheLookups exposes the counter for result cache lookups.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}

// AsyncJobs exposes the counter for async job state transitions.
func AsyncJobs() *prometheus.CounterVec {
	RegisterMetrics()
	return asyncJobsTotal
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}
