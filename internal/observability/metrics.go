package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	cacheHitsTotal        prometheus.Counter
	cacheMissesTotal      prometheus.Counter
	synthesizedTotal      prometheus.Counter
	retriesTotal          prometheus.Counter
	terminalFailuresTotal *prometheus.CounterVec
	runDurationSeconds    prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the grader.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grader_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grader_assessment_cache_hits_total",
			Help: "Grading units resolved from the assessment cache.",
		})

		cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grader_assessment_cache_misses_total",
			Help: "Grading units that required a backend dispatch.",
		})

		synthesizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grader_synthesized_results_total",
			Help: "Grading units resolved as not-attempted without a backend call.",
		})

		retriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grader_retries_total",
			Help: "Individual grading request retries issued.",
		})

		terminalFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grader_terminal_failures_total",
			Help: "Grading units left ungraded, by failure class.",
		}, []string{"class"})

		runDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "grader_run_duration_seconds",
			Help:    "Duration of complete grading runs.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			cacheHitsTotal, cacheMissesTotal, synthesizedTotal,
			retriesTotal, terminalFailuresTotal, runDurationSeconds,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// CacheHits exposes the assessment cache hit counter.
func CacheHits() prometheus.Counter {
	RegisterMetrics()
	return cacheHitsTotal
}

// CacheMisses exposes the assessment cache miss counter.
func CacheMisses() prometheus.Counter {
	RegisterMetrics()
	return cacheMissesTotal
}

// SynthesizedResults exposes the not-attempted synthesis counter.
func SynthesizedResults() prometheus.Counter {
	RegisterMetrics()
	return synthesizedTotal
}

// Retries exposes the retry counter.
func Retries() prometheus.Counter {
	RegisterMetrics()
	return retriesTotal
}

// TerminalFailures exposes the per-class terminal failure counter.
func TerminalFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return terminalFailuresTotal
}

// RunDuration exposes the grading run duration histogram.
func RunDuration() prometheus.Histogram {
	RegisterMetrics()
	return runDurationSeconds
}
