package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(queuePendingJobs, queueStuckReleased) }

var queuePendingJobs = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "assignment_queue_pending_jobs",
		Help: "Jobs currently waiting to be claimed.",
	},
)

var queueStuckReleased = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "assignment_queue_stuck_released_total",
		Help: "Claimed jobs released back to pending by the sweep.",
	},
)

func SetQueueDepth(n int) {
	queuePendingJobs.Set(float64(n))
}

func AddStuckReleased(n int) {
	queueStuckReleased.Add(float64(n))
}
