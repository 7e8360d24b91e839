package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeploymentRecord — результат одного запуска deploy.
//
// Создаётся в начале запуска, финализируется ровно один раз
// и записывается в журнал аудита как payload маркера окончания.
type DeploymentRecord struct {
	// ID — идентификатор запуска (совпадает с run_id в журнале).
	ID uuid.UUID `json:"id"`

	// Process — имя процесса в менеджере процессов.
	Process string `json:"process"`

	// Branch — ветка, которую разворачиваем.
	Branch string `json:"branch"`

	// StartedAt — время начала.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, пока запуск не завершён.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Outcome — исход запуска.
	Outcome Outcome `json:"outcome"`

	// Commit — ссылка на commit (HEAD после fetch).
	Commit string `json:"commit,omitempty"`

	// LogExcerpt — хвост вывода внешних инструментов.
	LogExcerpt string `json:"log_excerpt,omitempty"`

	// ErrorKind — категория ошибки, если Outcome == failure.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Error — текст ошибки (без секретов).
	Error string `json:"error,omitempty"`
}

// NewDeploymentRecord создаёт запись в состоянии started.
func NewDeploymentRecord(process, branch string, now time.Time) *DeploymentRecord {
	return &DeploymentRecord{
		ID:        uuid.New(),
		Process:   process,
		Branch:    branch,
		StartedAt: now,
		Outcome:   OutcomeStarted,
	}
}

// Duration возвращает продолжительность запуска.
// Возвращает 0, если запуск ещё не завершён.
func (r *DeploymentRecord) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarkSucceeded переводит запись в success.
func (r *DeploymentRecord) MarkSucceeded(now time.Time) error {
	if r.Outcome.IsTerminal() {
		return ErrAlreadyFinal
	}
	r.Outcome = OutcomeSuccess
	r.FinishedAt = &now
	return nil
}

// MarkFailed переводит запись в failure.
func (r *DeploymentRecord) MarkFailed(now time.Time, kind ErrorKind, msg string) error {
	if r.Outcome.IsTerminal() {
		return ErrAlreadyFinal
	}
	r.Outcome = OutcomeFailure
	r.FinishedAt = &now
	r.ErrorKind = kind
	r.Error = msg
	return nil
}
