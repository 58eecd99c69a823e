package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var idRegex = regexp.MustCompile(`/\d+`)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method"},
	)

	VideoUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_uploads_total",
			Help: "Total number of video uploads",
		},
		[]string{"status"},
	)

	VideoDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_deletions_total",
			Help: "Total number of video deletions",
		},
		[]string{"status"},
	)

	RenditionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "renditions_completed_total",
			Help: "Total number of renditions produced",
		},
		[]string{"resolution"},
	)

	ThumbnailExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thumbnail_extractions_total",
			Help: "Total number of thumbnail extractions",
		},
		[]string{"status"},
	)

	CleanupMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cleanup_misses_total",
			Help: "Files already gone when cleanup tried to remove them",
		},
	)

	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	JobsEnqueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_enqueued_total",
			Help: "Total number of jobs enqueued",
		},
		[]string{"type"},
	)

	JobsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_processed_total",
			Help: "Total number of jobs processed",
		},
		[]string{"type", "status"},
	)

	JobsProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobs_processing_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"type", "stage"},
	)

	JobsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobs_in_queue",
			Help: "Number of jobs currently waiting in the queue",
		},
	)

	WorkerPoolActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_pool_active_jobs",
			Help: "Number of jobs currently being processed by workers",
		},
	)

	WorkerPoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_pool_size",
			Help: "Size of the worker pool",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "environment", "service"},
	)

	AppUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_up",
			Help: "Application is up and running",
		},
	)
)

// NormalizePath collapses numeric path segments so per-video URLs share one
// label value.
func NormalizePath(path string) string {
	return idRegex.ReplaceAllString(path, "/:id")
}

func RecordVideoUpload(status string) {
	VideoUploadsTotal.WithLabelValues(status).Inc()
}

func RecordVideoDeletion(status string) {
	VideoDeletionsTotal.WithLabelValues(status).Inc()
}

func RecordRenditionCompleted(resolution string) {
	RenditionsCompletedTotal.WithLabelValues(resolution).Inc()
}

func RecordThumbnailExtraction(status string) {
	ThumbnailExtractionsTotal.WithLabelValues(status).Inc()
}

func RecordCleanupMiss() {
	CleanupMissesTotal.Inc()
}

func RecordJobEnqueued(jobType string) {
	JobsEnqueuedTotal.WithLabelValues(jobType).Inc()
}

func RecordJobStage(jobType, stage string, durationSeconds float64) {
	JobsProcessingDuration.WithLabelValues(jobType, stage).Observe(durationSeconds)
}

func SetAppInfo(version, environment, service string) {
	AppInfo.WithLabelValues(version, environment, service).Set(1)
	AppUp.Set(1)
}

func SetWorkerPoolSize(size int) {
	WorkerPoolSize.Set(float64(size))
}

func SetJobsInQueue(count int) {
	JobsInQueue.Set(float64(count))
}
