package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenesplit_jobs_processed_total",
		Help: "Total number of split jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scenesplit_job_processing_duration_seconds",
		Help:    "Duration of the split pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	ScenesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenesplit_scenes_detected_total",
		Help: "Total number of scenes detected across all jobs",
	})

	ClipsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenesplit_clips_created_total",
		Help: "Total number of clip files successfully encoded",
	})

	ClipFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenesplit_clip_failures_total",
		Help: "Total number of per-clip encode failures",
	})

	FramesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scenesplit_frames_scanned_total",
		Help: "Total number of frames consumed by detection scans",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scenesplit_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scenesplit_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
