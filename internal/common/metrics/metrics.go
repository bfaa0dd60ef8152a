// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MatchesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matches_scored_total",
			Help: "Startup/thesis pairs scored, by confidence level",
		},
		[]string{"confidence"},
	)

	MatchesExcluded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_excluded_total",
			Help: "Pairs rejected by an exclude keyword",
		},
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_overall_score",
			Help:    "Distribution of overall match scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_cache_lookups_total",
			Help: "Redis read-through lookups by entity and result",
		},
		[]string{"entity", "result"},
	)

	MatchEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_events_published_total",
			Help: "High-confidence match events sent to SNS",
		},
		[]string{"status"},
	)
)

// ObserveMatch records one scored pair.
func ObserveMatch(confidence string, score int, excluded bool) {
	if excluded {
		MatchesExcluded.Inc()
	}
	MatchesScored.WithLabelValues(confidence).Inc()
	MatchScore.Observe(float64(score))
}
