package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests to the diagnostics endpoint",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Diagnostics request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Store operations by outcome (applied or noop)",
		},
		[]string{"operation", "result"},
	)

	PersistWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_persist_writes_total",
			Help: "Slice writes to the kv store by outcome",
		},
		[]string{"slice", "result"},
	)

	PersistLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_persist_latency_seconds",
			Help:    "Latency of a single slice write",
			Buckets: prometheus.DefBuckets,
		},
	)

	PersistQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_persist_queue_depth",
			Help: "Pending slice writes",
		},
	)

	SliceFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_slice_fallbacks_total",
			Help: "Slices that fell back to their seed on load",
		},
		[]string{"slice", "reason"},
	)

	GateAnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parent_gate_answers_total",
			Help: "Parental gate answers by result",
		},
		[]string{"result"},
	)

	GateLockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parent_gate_lockouts_total",
			Help: "Total number of parental gate lockouts",
		},
	)

	BreakRemindersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "usage_break_reminders_total",
			Help: "Total number of break reminders fired",
		},
	)

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Identity provider calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Presigned media uploads issued, by kind",
		},
		[]string{"kind"},
	)

	WorkerLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_latency_seconds",
			Help:    "Worker task execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"task"},
	)
)

// Result maps an applied flag to the "result" label.
func Result(applied bool) string {
	if applied {
		return "applied"
	}
	return "noop"
}
