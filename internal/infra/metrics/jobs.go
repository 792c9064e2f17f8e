package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		jobsProcessedTotal,
		jobStageSeconds,
		queueDepth,
	)
}

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "processing_jobs_total",
		Help: "Total number of processing jobs finished, labeled by outcome.",
	},
	[]string{"status"}, // 'completed', 'failed', 'cancelled'
)

var jobStageSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "processing_stage_seconds",
		Help:    "Per-stage pipeline latency distribution in seconds.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	},
	[]string{"stage"}, // 'extract', 'transform', 'render', 'deliver'
)

var queueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "processing_queue_depth",
		Help: "Current length of the processing FIFO.",
	},
)

func IncJob(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStage(stage string, seconds float64) {
	jobStageSeconds.WithLabelValues(norm(stage)).Observe(seconds)
}

func SetQueueDepth(n int) {
	queueDepth.Set(float64(n))
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
