package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"nolofication/internal/pkg/config"
)

// SchedulerMetrics provides Prometheus metrics for the scheduler
// component. It embeds the standard ConfigMetrics for configuration
// monitoring and adds drain/purge job tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - scheduler_config_load_timestamp
//   - scheduler_config_validation_errors_total
//   - scheduler_config_fallbacks_total
//   - scheduler_config_fallback_active
//
// Scheduler-specific metrics:
//   - scheduler_drain_runs_total: Drain passes by status (success/failure)
//   - scheduler_drain_duration_seconds: Drain pass duration histogram
//   - scheduler_notifications_delivered_total: Pending entries delivered
//   - scheduler_pending_purged_total: Cancelled entries purged
//   - scheduler_last_success_timestamp: Unix time of last successful pass
type SchedulerMetrics struct {
	*config.ConfigMetrics

	// DrainRunsTotal counts drain passes by status.
	// Labels: status (started, success, failure)
	DrainRunsTotal *prometheus.CounterVec

	// DrainDurationSeconds measures the duration of a drain pass.
	// Buckets cover 100ms to 5m; a pass normally finishes in seconds.
	DrainDurationSeconds prometheus.Histogram

	// NotificationsDeliveredTotal counts pending entries processed by
	// drain passes (delivered or dropped for a missing user).
	NotificationsDeliveredTotal prometheus.Counter

	// PendingPurgedTotal counts cancelled entries removed by purge runs.
	PendingPurgedTotal prometheus.Counter

	// LastSuccessTimestamp records the Unix timestamp of the last
	// successful drain pass.
	LastSuccessTimestamp prometheus.Gauge

	// PendingQueueDepth is the number of non-cancelled queue entries,
	// refreshed after every drain pass.
	PendingQueueDepth prometheus.Gauge
}

// NewSchedulerMetrics creates a SchedulerMetrics instance. Metrics are
// registered with the default registry via promauto on creation.
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{
		ConfigMetrics: config.NewConfigMetrics("scheduler"),

		DrainRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_drain_runs_total",
			Help: "Total number of drain passes by status (started/success/failure)",
		}, []string{"status"}),

		DrainDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheduler_drain_duration_seconds",
			Help:    "Duration of drain passes in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		NotificationsDeliveredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_notifications_delivered_total",
			Help: "Total number of pending notifications processed by drain passes",
		}),

		PendingPurgedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_pending_purged_total",
			Help: "Total number of stale cancelled entries purged",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_last_success_timestamp",
			Help: "Unix timestamp of the last successful drain pass",
		}),

		PendingQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "scheduler_pending_queue_depth",
			Help: "Current number of non-cancelled pending notifications",
		}),
	}
}

// MustRegister is a no-op kept for API symmetry; metrics are
// auto-registered via promauto when created in NewSchedulerMetrics.
func (m *SchedulerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordDrainRun increments the drain pass counter for the given
// status ("started", "success" or "failure").
func (m *SchedulerMetrics) RecordDrainRun(status string) {
	m.DrainRunsTotal.WithLabelValues(status).Inc()
}

// RecordDrainDuration observes the duration of a drain pass in seconds.
func (m *SchedulerMetrics) RecordDrainDuration(seconds float64) {
	m.DrainDurationSeconds.Observe(seconds)
}

// RecordDelivered adds the number of entries processed by a drain pass.
func (m *SchedulerMetrics) RecordDelivered(count int) {
	m.NotificationsDeliveredTotal.Add(float64(count))
}

// RecordPurged adds the number of entries removed by a purge run.
func (m *SchedulerMetrics) RecordPurged(count int64) {
	m.PendingPurgedTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful
// drain pass.
func (m *SchedulerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}

// SetQueueDepth updates the pending queue depth gauge.
func (m *SchedulerMetrics) SetQueueDepth(count int64) {
	m.PendingQueueDepth.Set(float64(count))
}
