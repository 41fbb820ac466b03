package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes request latency per route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// TokenVerifications counts bearer token checks by outcome.
	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_verifications_total",
			Help: "Total number of bearer token verifications",
		},
		[]string{"result"}, // result: ok, invalid, expired, missing
	)

	// TaskCompletionTransitions counts completion state machine transitions.
	TaskCompletionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_completion_transitions_total",
			Help: "Total number of task completion transitions",
		},
		[]string{"transition"}, // transition: completed, reopened
	)

	// EventsPublished counts domain events handed to the broker.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"routing_key", "status"},
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementTokenVerification records one token check.
func IncrementTokenVerification(result string) {
	TokenVerifications.WithLabelValues(result).Inc()
}

// IncrementCompletionTransition records a completed or reopened task.
func IncrementCompletionTransition(completed bool) {
	transition := "reopened"
	if completed {
		transition = "completed"
	}
	TaskCompletionTransitions.WithLabelValues(transition).Inc()
}

// IncrementEventPublished records a publish attempt.
func IncrementEventPublished(routingKey string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	EventsPublished.WithLabelValues(routingKey, status).Inc()
}
