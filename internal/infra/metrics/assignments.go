package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(caseAssignmentsTotal) }

var caseAssignmentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "case_assignments_total",
		Help: "Per-case assignment transaction outcomes.",
	},
	[]string{"outcome"}, // 'success', 'case_not_found', 'agent_invalid', 'mismatch', 'error'
)

func IncAssignment(outcome string) {
	caseAssignmentsTotal.WithLabelValues(norm(outcome)).Inc()
}
