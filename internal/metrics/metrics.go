// Package metrics exposes the Prometheus counters shared by the
// gateway and the worker pool.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_submissions_total",
		Help: "Trip submissions accepted as new jobs.",
	})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_cache_hits_total",
		Help: "Submissions answered from trip history without a new job.",
	})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_jobs_processed_total",
		Help: "Jobs processed by the worker pool, by outcome.",
	}, []string{"outcome"})

	ArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_archived_total",
		Help: "Done jobs archived to trip history.",
	})
)
