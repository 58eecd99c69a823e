package metrics

import (
	"time"
)

// PrometheusCollector implements the queue's MetricsCollector interface
// using Prometheus metrics for job processing statistics.
type PrometheusCollector struct{}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{}
}

// JobStarted is called when a job begins processing.
func (c *PrometheusCollector) JobStarted(jobType string) {
	WorkerPoolActiveJobs.Inc()
}

// JobCompleted is called when a job finishes successfully.
func (c *PrometheusCollector) JobCompleted(jobType string, duration time.Duration) {
	WorkerPoolActiveJobs.Dec()
	JobsProcessedTotal.WithLabelValues(jobType, "success").Inc()
	JobsProcessingDuration.WithLabelValues(jobType, "total").Observe(duration.Seconds())
}

// JobFailed is called when a job fails permanently.
func (c *PrometheusCollector) JobFailed(jobType string, duration time.Duration) {
	WorkerPoolActiveJobs.Dec()
	JobsProcessedTotal.WithLabelValues(jobType, "error").Inc()
	JobsProcessingDuration.WithLabelValues(jobType, "total").Observe(duration.Seconds())
}

// JobRetrying is called when a job is being retried.
func (c *PrometheusCollector) JobRetrying(jobType string, attempt int) {
	WorkerPoolActiveJobs.Dec()
	JobsProcessedTotal.WithLabelValues(jobType, "retry").Inc()
}
