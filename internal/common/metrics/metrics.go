// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_queries_total",
			Help: "Total number of chat queries answered, by intent",
		},
		[]string{"intent"},
	)

	ChatQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_query_failures_total",
			Help: "Total number of chat queries answered with an apology",
		},
		[]string{"error_code"},
	)

	ChatQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_query_duration_seconds",
			Help:    "Duration of chat query handling in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"intent"},
	)

	ChatRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_rate_limited_total",
			Help: "Total number of chat requests rejected by the rate limiter",
		},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
