// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowActionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_actions_completed_total",
			Help: "Total number of workflow actions completed",
		},
		[]string{"action"},
	)

	WorkflowActionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_actions_failed_total",
			Help: "Total number of workflow actions failed",
		},
		[]string{"action", "error_code"},
	)

	WorkflowActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "workflow_action_duration_seconds",
			Help: "Duration of workflow action processing in seconds",
		},
		[]string{"action"},
	)

	VerificationChecksRun = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_checks_run_total",
			Help: "Background-check simulator invocations by outcome",
		},
		[]string{"outcome"},
	)
)
