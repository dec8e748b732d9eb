package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(memoryJobsProcessedTotal, memoryJobsEnqueuedTotal) }

var memoryJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "memory_jobs_processed_total",
		Help: "Total number of web memory jobs processed, labeled by outcome.",
	},
	[]string{"status"}, // 'completed', 'failed', 'retried'
)

var memoryJobsEnqueuedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "memory_jobs_enqueued_total",
		Help: "Total number of web memory jobs enqueued.",
	},
)

func IncJobProcessed(status string) {
	memoryJobsProcessedTotal.WithLabelValues(status).Inc()
}

func IncJobEnqueued() {
	memoryJobsEnqueuedTotal.Inc()
}
