// Package metrics holds the Prometheus collectors for recommendation traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviefinder_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "success", "transport", "validation", "service"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "moviefinder_recommend_duration_seconds",
			Help: "Duration of recommendation requests in seconds",
			// Generation is slow; the default buckets stop at 10s.
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	RecommendMovies = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviefinder_recommend_movies",
			Help:    "Number of movies returned per successful request",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)

	UpstreamUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviefinder_upstream_up",
			Help: "Whether the last health probe reached the recommendation service (1 = up)",
		},
	)
)

// RecordRecommendation records one finished request.
func RecordRecommendation(outcome string, duration time.Duration, movies int) {
	RecommendRequests.WithLabelValues(outcome).Inc()
	RecommendDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if outcome == "success" {
		RecommendMovies.Observe(float64(movies))
	}
}

// SetUpstreamUp records the result of a health probe.
func SetUpstreamUp(up bool) {
	if up {
		UpstreamUp.Set(1)
		return
	}
	UpstreamUp.Set(0)
}
