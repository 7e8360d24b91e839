package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/telemetry"
)

// recorder пишет записи аудита одного запуска и метрики фаз.
type recorder struct {
	sink   audit.Sink
	kind   domain.OperationKind
	runID  uuid.UUID
	now    func() time.Time
	logger *slog.Logger
}

// entry описывает одну запись фазы.
type entry struct {
	phase     string
	outcome   domain.Outcome
	message   string
	duration  time.Duration
	errorKind domain.ErrorKind
	details   map[string]any
}

// record добавляет запись в журнал.
//
// Запись выполняется без отмены: исход фазы фиксируется даже после
// сигнала или таймаута родительского контекста.
func (r *recorder) record(ctx context.Context, e entry) error {
	if e.duration > 0 {
		telemetry.ObservePhase(string(r.kind), e.phase, e.duration)
	}

	err := r.sink.Append(context.WithoutCancel(ctx), domain.AuditEntry{
		Timestamp:  r.now(),
		RunID:      r.runID,
		Kind:       r.kind,
		Phase:      e.phase,
		Outcome:    e.outcome,
		Message:    e.message,
		DurationMs: e.duration.Milliseconds(),
		ErrorKind:  e.errorKind,
		Details:    e.details,
	})
	if err != nil {
		r.logger.Error("failed to write audit entry",
			"phase", e.phase,
			"outcome", e.outcome,
			"error", err,
		)
	}
	return err
}

// phaseFailure формирует запись о неудачной фазе.
func phaseFailure(pe *PhaseError, d time.Duration, excerpt int) entry {
	e := entry{
		phase:     pe.Phase,
		outcome:   domain.OutcomeFailure,
		message:   pe.Err.Error(),
		duration:  d,
		errorKind: pe.Kind,
	}
	if pe.Output != "" {
		e.details = map[string]any{"output": lastLines(pe.Output, excerpt)}
	}
	return e
}
