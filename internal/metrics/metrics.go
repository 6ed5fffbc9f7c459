// Package metrics holds the Prometheus instruments for the API and the
// recommendation pipeline. They register with the default registry, which
// the router serves on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dietrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dietrec_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietrec_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietrec_recommendations_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // "ok", "no_matches", "invalid_query", "dataset_unavailable", "insufficient_data", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dietrec_recommendation_duration_seconds",
			Help:    "Time spent filtering and searching the dataset",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dietrec_recommendation_candidates",
			Help:    "Rows remaining after the ingredient filter",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Dataset Metrics
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dietrec_dataset_rows",
			Help: "Number of rows in the resident recipe dataset",
		},
	)

	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dietrec_dataset_load_duration_seconds",
			Help:    "Duration of dataset loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	DatasetLoadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dietrec_dataset_load_errors_total",
			Help: "Total number of failed dataset loads",
		},
	)
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records one recommendation query.
func RecordRecommendation(outcome string, candidates int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if candidates >= 0 {
		RecommendationCandidates.Observe(float64(candidates))
	}
}

// RecordDatasetLoad records a dataset load attempt.
func RecordDatasetLoad(rows int, duration time.Duration, err error) {
	DatasetLoadDuration.Observe(duration.Seconds())
	if err != nil {
		DatasetLoadErrors.Inc()
		return
	}
	DatasetRows.Set(float64(rows))
}
