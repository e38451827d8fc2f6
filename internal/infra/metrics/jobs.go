package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsProcessedTotal, jobDurationMs) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assignment_jobs_processed_total",
		Help: "Total number of assignment jobs processed, labeled by kind and status.",
	},
	[]string{"kind", "status"}, // kind: 'single'|'bulk'|'reassign'; status: 'completed'|'failed'
)

var jobDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "assignment_job_duration_ms",
		Help:    "Assignment job execution duration in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
	},
	[]string{"kind"},
)

func IncJob(kind, status string) {
	jobsProcessedTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func ObserveJobDuration(kind string, ms float64) {
	jobDurationMs.WithLabelValues(norm(kind)).Observe(ms)
}
