package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(aiCallsTotal, aiCallSeconds) }

var aiCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_calls_total",
		Help: "LLM calls, labeled by pipeline stage and outcome.",
	},
	[]string{"stage", "outcome"}, // stage: 'querygen' | 'synthesis'
)

var aiCallSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "ai_call_duration_seconds",
		Help:    "LLM call latency by pipeline stage.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	},
	[]string{"stage"},
)

func ObserveAICall(stage string, seconds float64, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	aiCallsTotal.WithLabelValues(stage, outcome).Inc()
	aiCallSeconds.WithLabelValues(stage).Observe(seconds)
}
