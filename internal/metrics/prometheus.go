package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkerExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humesync_worker_executions_total",
			Help: "Total number of worker executions",
		},
		[]string{"worker", "status"}, // status: success|error
	)

	WorkerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "humesync_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"worker"},
	)

	WorkerLastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "humesync_worker_last_run_timestamp",
			Help: "Unix timestamp of last worker execution",
		},
		[]string{"worker"},
	)

	// Voice provider metrics
	ProviderAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humesync_provider_api_calls_total",
			Help: "Total number of voice provider config API calls",
		},
		[]string{"operation", "status"}, // status: HTTP code or timeout|connection|rate_limited
	)

	ProviderAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "humesync_provider_api_latency_seconds",
			Help:    "Voice provider API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	ProviderNameConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "humesync_provider_name_conflicts_total",
			Help: "Create calls answered with 409 and retried under a suffixed name",
		},
	)

	// Prompt metrics
	PromptFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "humesync_prompt_fallbacks_total",
			Help: "Compositions that failed and returned the base prompt",
		},
	)

	PromptSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "humesync_prompt_size_bytes",
			Help:    "Size of composed prompts in bytes",
			Buckets: prometheus.ExponentialBuckets(512, 2, 8),
		},
	)

	// Sync metrics
	SyncOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humesync_sync_operations_total",
			Help: "Local to remote agent sync operations",
		},
		[]string{"operation", "status"}, // status: success|error
	)

	ReconcileDrift = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "humesync_reconcile_drift",
			Help: "Result of the last reconciliation pass",
		},
		[]string{"kind"}, // kind: checked|missing|orphaned
	)

	// Cache metrics
	SnapshotCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humesync_snapshot_cache_requests_total",
			Help: "Remote config snapshot cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)

	// Event metrics
	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "humesync_kafka_messages_total",
			Help: "Total Kafka messages published",
		},
		[]string{"topic", "status"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(WorkerExecutions)
	prometheus.MustRegister(WorkerDuration)
	prometheus.MustRegister(WorkerLastRun)

	prometheus.MustRegister(ProviderAPICalls)
	prometheus.MustRegister(ProviderAPILatency)
	prometheus.MustRegister(ProviderNameConflicts)

	prometheus.MustRegister(PromptFallbacks)
	prometheus.MustRegister(PromptSize)

	prometheus.MustRegister(SyncOperations)
	prometheus.MustRegister(ReconcileDrift)
	prometheus.MustRegister(SnapshotCacheRequests)
	prometheus.MustRegister(KafkaMessages)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordWorkerExecution records a worker execution
func RecordWorkerExecution(worker string, duration time.Duration, err error) {
	WorkerExecutions.WithLabelValues(worker, status(err)).Inc()
	WorkerDuration.WithLabelValues(worker).Observe(duration.Seconds())
	WorkerLastRun.WithLabelValues(worker).SetToCurrentTime()
}

// RecordProviderCall records one provider round trip.
// outcome is the HTTP status code as text, or the transport failure kind.
func RecordProviderCall(operation, outcome string, latency time.Duration) {
	ProviderAPICalls.WithLabelValues(operation, outcome).Inc()
	ProviderAPILatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// RecordSync records a sync service operation
func RecordSync(operation string, err error) {
	SyncOperations.WithLabelValues(operation, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
