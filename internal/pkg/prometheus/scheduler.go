package prometheus

import "github.com/prometheus/client_golang/prometheus"

// Scheduler engine metrics, registered on the process-wide registry.
var (
	RunsScheduled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yume",
		Subsystem: "scheduler",
		Name:      "runs_scheduled_total",
		Help:      "Scheduling decisions installed, by source (deterministic, ai, fallback).",
	}, []string{"source"})

	RunsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yume",
		Subsystem: "scheduler",
		Name:      "runs_executed_total",
		Help:      "Reminder fires, by outcome (completed, failed).",
	}, []string{"outcome"})

	DeferredCollapsed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "yume",
		Subsystem: "scheduler",
		Name:      "deferred_collapsed_total",
		Help:      "Deferred-trigger requests absorbed by the debounce window.",
	})

	NextRunUnix = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "yume",
		Subsystem: "scheduler",
		Name:      "next_run_timestamp_seconds",
		Help:      "Unix time of the currently armed reminder run, 0 when idle.",
	})

	ExecutionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "yume",
		Subsystem: "scheduler",
		Name:      "execution_duration_seconds",
		Help:      "Duration of reminder fire handling.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

func init() {
	registry.MustRegister(
		RunsScheduled,
		RunsExecuted,
		DeferredCollapsed,
		NextRunUnix,
		ExecutionDuration,
	)
}
