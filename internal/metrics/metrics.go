package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidscribe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidscribe_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Task Metrics
	TasksCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidscribe_tasks_created_total",
			Help: "Total number of extraction tasks created",
		},
		[]string{"platform"},
	)

	TasksCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidscribe_tasks_completed_total",
			Help: "Total number of finished extraction tasks",
		},
		[]string{"status"},
	)

	TasksInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidscribe_tasks_in_progress",
			Help: "Number of tasks currently being processed",
		},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidscribe_extraction_duration_seconds",
			Help:    "Extraction backend call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17 minutes
		},
		[]string{"platform"},
	)

	// Translation Metrics
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidscribe_translations_total",
			Help: "Total number of finished subtitle translations",
		},
		[]string{"status"},
	)

	TranslationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidscribe_translation_duration_seconds",
			Help:    "End-to-end translation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// Storage Metrics
	ArtifactBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidscribe_artifact_bytes_written_total",
			Help: "Total artifact bytes written to object storage",
		},
		[]string{"kind"},
	)

	// Queue Metrics
	ResumeQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidscribe_resume_queue_depth",
			Help: "Number of resume messages waiting in the queue",
		},
	)
)
