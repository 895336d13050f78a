package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame outcomes recorded by FramesProcessed.
const (
	FrameAnalyzed = "analyzed"
	FrameSkipped  = "skipped"
)

var (
	// Registry holds every collector below. It is separate from the default
	// registry so tests can gather it without process-wide side effects.
	Registry = prometheus.NewRegistry()

	// FramesProcessed counts frames driven through the analyzers.
	FramesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canine",
		Name:      "frames_processed_total",
		Help:      "Frames processed, by outcome (analyzed or skipped for missing keypoints).",
	}, []string{"outcome"})

	// SessionsAnalyzed counts completed analysis sessions.
	SessionsAnalyzed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "canine",
		Name:      "sessions_analyzed_total",
		Help:      "Analysis sessions completed.",
	})

	// CollaboratorFailures counts failed calls to external services.
	CollaboratorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "canine",
		Name:      "collaborator_failures_total",
		Help:      "Failed calls to external collaborators, by collaborator.",
	}, []string{"collaborator"})

	// AnalysisDuration observes wall time per analysis session.
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "canine",
		Name:      "analysis_duration_seconds",
		Help:      "Wall time spent analysing one session.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})
)

func init() {
	Registry.MustRegister(FramesProcessed, SessionsAnalyzed, CollaboratorFailures, AnalysisDuration)
}

// MetricsHandler serves the registry in the Prometheus exposition format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
