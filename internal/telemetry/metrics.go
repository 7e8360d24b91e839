package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keeper_operations_total",
			Help: "Total orchestrator runs by kind and terminal outcome",
		},
		[]string{"kind", "outcome"},
	)

	phaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keeper_phase_duration_seconds",
			Help:    "Duration of orchestrator phases in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
		},
		[]string{"kind", "phase"},
	)

	uploadAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keeper_upload_attempts_total",
			Help: "Object storage upload attempts by outcome",
		},
		[]string{"outcome"},
	)

	schedulerTriggers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keeper_scheduler_triggers_total",
			Help: "Backup runs triggered by the scheduler",
		},
	)

	schedulerSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keeper_scheduler_skips_total",
			Help: "Backup runs skipped because a previous run still holds the guard",
		},
	)
)

// ObserveOperation учитывает терминальный исход запуска.
func ObserveOperation(kind, outcome string) {
	operationsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObservePhase учитывает длительность фазы.
func ObservePhase(kind, phase string, d time.Duration) {
	phaseDuration.WithLabelValues(kind, phase).Observe(d.Seconds())
}

// ObserveUploadAttempt учитывает одну попытку загрузки.
func ObserveUploadAttempt(ok bool) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	uploadAttempts.WithLabelValues(outcome).Inc()
}

// ObserveSchedulerTrigger учитывает запуск по расписанию.
func ObserveSchedulerTrigger() {
	schedulerTriggers.Inc()
}

// ObserveSchedulerSkip учитывает пропущенный запуск.
func ObserveSchedulerSkip() {
	schedulerSkips.Inc()
}
