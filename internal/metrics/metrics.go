// Package metrics registers the Prometheus collectors of the game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "muscle_avatar"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "route"},
	)
)

// Game metrics
var (
	SetsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sets_started_total",
		Help:      "Sets started.",
	})

	SetsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sets_completed_total",
			Help:      "Completed sets by where leaked gains went.",
		},
		[]string{"leak"},
	)

	SetsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sets_abandoned_total",
		Help:      "Sets dropped before acknowledging the result.",
	})

	Reps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reps_total",
			Help:      "Scored reps by outcome.",
		},
		[]string{"outcome"},
	)

	LevelUps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "level_ups_total",
		Help:      "Levels gained.",
	})

	FormAccuracy = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "form_accuracy",
		Help:      "Form accuracy of completed sets.",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	SaveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "save_errors_total",
		Help:      "Failed writes of the save record.",
	})

	DailyResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "daily_resets_total",
		Help:      "Day rollovers applied.",
	})
)
