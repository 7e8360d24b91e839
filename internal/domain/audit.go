package domain

import (
	"time"

	"github.com/google/uuid"
)

// Фазы операций.
const (
	PhaseStart   = "start"
	PhaseFetch   = "fetch"
	PhaseInstall = "install"
	PhaseRestart = "restart"
	PhaseEnd     = "end"

	PhaseGuard  = "guard"
	PhaseDump   = "dump"
	PhaseUpload = "upload"
	PhasePrune  = "prune"
	PhaseResume = "resume"
)

// AuditEntry — одна запись журнала аудита (одна строка JSONL).
//
// Записи только добавляются, никогда не изменяются.
type AuditEntry struct {
	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// RunID — идентификатор запуска, к которому относится запись.
	RunID uuid.UUID `json:"run_id"`

	// Kind — тип операции (deploy | backup).
	Kind OperationKind `json:"kind"`

	// Phase — фаза операции (fetch, dump, upload, ...).
	Phase string `json:"phase"`

	// Outcome — исход фазы.
	Outcome Outcome `json:"outcome"`

	// Message — человекочитаемое сообщение.
	Message string `json:"message,omitempty"`

	// DurationMs — длительность фазы в миллисекундах.
	DurationMs int64 `json:"duration_ms,omitempty"`

	// ErrorKind — категория ошибки.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Details — произвольные детали (артефакт, commit, вывод инструмента).
	Details map[string]any `json:"details,omitempty"`
}
