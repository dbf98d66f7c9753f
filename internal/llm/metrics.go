package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	teacherResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_teacher_responses_total",
			Help: "Teacher generations by outcome.",
		},
		[]string{"outcome"},
	)
	teacherDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tutor_teacher_response_duration_seconds",
			Help:    "Latency of teacher generations.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
	)
)

func init() {
	prometheus.MustRegister(teacherResponses, teacherDuration)
}

// Outcome labels.
const (
	outcomeOK      = "ok"
	outcomeEmpty   = "empty"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

func observe(start time.Time, outcome string) {
	teacherDuration.Observe(time.Since(start).Seconds())
	teacherResponses.WithLabelValues(outcome).Inc()
}
