package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(bulkBatchesTotal, bulkCasesTotal) }

var bulkBatchesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bulk_batches_total",
		Help: "Bulk batches finished, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'cancelled'
)

var bulkCasesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bulk_cases_processed_total",
		Help: "Cases processed inside bulk batches, labeled by result.",
	},
	[]string{"result"}, // 'success', 'failure'
)

func IncBatch(status string) {
	bulkBatchesTotal.WithLabelValues(norm(status)).Inc()
}

func AddBulkCases(result string, n int) {
	bulkCasesTotal.WithLabelValues(norm(result)).Add(float64(n))
}
