// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	PipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_run_duration_seconds",
			Help: "Duration of pipeline runs in seconds",
		},
		[]string{"operation"},
	)

	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Total number of notifications appended per rule",
		},
		[]string{"rule"},
	)

	NotificationsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_suppressed_total",
			Help: "Notifications suppressed by dedup or by an unknown activity result",
		},
		[]string{"rule", "reason"},
	)

	GatewaySendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_sends_total",
			Help: "Messaging gateway delivery attempts by outcome",
		},
		[]string{"outcome"},
	)
)
