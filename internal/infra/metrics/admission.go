package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(rateLimitDecisions, admissionRefusals)
}

var rateLimitDecisions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rate_limit_decisions_total",
		Help: "Rate limiter outcomes.",
	},
	[]string{"decision"}, // 'allowed', 'denied', 'fail_open'
)

var admissionRefusals = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "admission_refusals_total",
		Help: "Requests refused before enqueue.",
	},
	[]string{"reason"}, // 'rate_limited', 'duplicate', 'queue_full', 'not_allowed'
)

func IncRateLimit(decision string) {
	rateLimitDecisions.WithLabelValues(norm(decision)).Inc()
}

func IncAdmissionRefusal(reason string) {
	admissionRefusals.WithLabelValues(norm(reason)).Inc()
}
