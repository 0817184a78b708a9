package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ComparisonCount counts comparisons by where they ran and the tier reached
	ComparisonCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_comparisons_total",
			Help: "Total number of document comparisons",
		},
		[]string{"source", "level"},
	)

	// ComparisonDuration measures engine time per comparison
	ComparisonDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "similarity_comparison_duration_seconds",
			Help:    "Document comparison duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"source"},
	)

	// FallbackCount counts remote comparisons recomputed locally
	FallbackCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_remote_fallbacks_total",
			Help: "Total number of remote comparisons that fell back to the local engine",
		},
	)

	// JobCount counts async jobs by final status
	JobCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_jobs_total",
			Help: "Total number of async comparison jobs",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// InitPrometheus registers all collectors with the default registry. Safe to
// call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ComparisonCount)
		prometheus.MustRegister(ComparisonDuration)
		prometheus.MustRegister(FallbackCount)
		prometheus.MustRegister(JobCount)
	})
}

// MetricsHandler returns Prometheus metrics handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveComparison records one finished comparison.
func ObserveComparison(source, level string, seconds float64) {
	ComparisonCount.WithLabelValues(source, level).Inc()
	ComparisonDuration.WithLabelValues(source).Observe(seconds)
}
