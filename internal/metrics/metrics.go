package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide counters exposed at /metrics.  Labels carry no document
// content, only coarse outcomes.
var (
	Normalizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discharge",
		Name:      "normalizations_total",
		Help:      "Document normalization attempts by declared source and outcome.",
	}, []string{"source", "outcome"})

	Completions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "discharge",
		Name:      "completion_requests_total",
		Help:      "Completion service calls by kind and outcome.",
	}, []string{"kind", "outcome"})

	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "discharge",
		Name:      "completion_request_duration_seconds",
		Help:      "Latency of completion service calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "discharge",
		Name:      "sessions_started_total",
		Help:      "Sessions created after a successful passcode login.",
	})
)
