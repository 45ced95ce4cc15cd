package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VideosProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signsight_videos_processed_total",
		Help: "Total number of videos processed, by status",
	}, []string{"status"})

	VideoProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signsight_video_processing_duration_seconds",
		Help:    "Duration of the decode, detect, annotate and encode pass over one video",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	FramesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signsight_frames_processed_total",
		Help: "Total number of frames written to processed videos",
	})

	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signsight_inference_duration_seconds",
		Help:    "Latency of a single detector call",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signsight_detections_total",
		Help: "Total number of drawn detections, by label",
	}, []string{"label"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signsight_uploads_total",
		Help: "Total number of upload requests, by outcome",
	}, []string{"outcome"})
)
