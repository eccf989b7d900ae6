package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AnalysesTotal counts finished analyses by verdict.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steermap",
			Name:      "analyses_total",
			Help:      "Total number of completed capture analyses",
		},
		[]string{"verdict"},
	)

	// FramesProcessed counts dissector records consumed by the aggregator.
	FramesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "steermap",
			Name:      "frames_processed_total",
			Help:      "Total number of 802.11 frame records processed",
		},
	)

	// DissectorFailures counts dissector subprocess failures by kind.
	DissectorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steermap",
			Name:      "dissector_failures_total",
			Help:      "Total number of dissector subprocess failures",
		},
		[]string{"kind"},
	)

	// AnalysisDuration observes end-to-end analysis latency.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "steermap",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end capture analysis duration",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	// NarrativeFailures counts best-effort LLM narrative failures.
	NarrativeFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "steermap",
			Name:      "narrative_failures_total",
			Help:      "Total number of failed narrative generation calls",
		},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call from multiple entrypoints.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(AnalysesTotal)
		prometheus.DefaultRegisterer.Register(FramesProcessed)
		prometheus.DefaultRegisterer.Register(DissectorFailures)
		prometheus.DefaultRegisterer.Register(AnalysisDuration)
		prometheus.DefaultRegisterer.Register(NarrativeFailures)
	})
}
