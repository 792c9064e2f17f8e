package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensTotal,
		aiCallsLatencyMs,
	)
}

var aiTokensTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_tokens_total",
		Help: "Sum of total tokens per model and operation.",
	},
	[]string{"model", "operation"},
)

var aiCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_calls_latency_ms",
		Help:    "AI call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
	},
	[]string{"model", "operation", "success"},
)

func ObserveAICall(model, operation string, tokensTotal, latencyMs int, success bool) {
	aiTokensTotal.WithLabelValues(norm(model), norm(operation)).Add(float64(tokensTotal))
	aiCallsLatencyMs.WithLabelValues(norm(model), norm(operation), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
