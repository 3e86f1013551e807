// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nutristat_api_request_duration_seconds",
			Help:    "Total time taken for requests in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutristat_api_predictions_total",
			Help: "Predictions served, by predicted category",
		},
		[]string{"category"},
	)

	RecommendationLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutristat_api_recommendation_lookups_total",
			Help: "Recommendation lookups, by category and whether anything matched",
		},
		[]string{"category", "found"},
	)

	HistoryAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutristat_api_history_appends_total",
			Help: "History appends, by backend and result",
		},
		[]string{"backend", "result"},
	)

	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutristat_api_error_count",
			Help: "Error count",
		},
		[]string{"endpoint", "kind"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nutristat_api_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nutristat_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)
