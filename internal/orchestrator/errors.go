package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/tools"
)

// Ошибки оркестраторов. PhaseError сопоставляется с ними через errors.Is.
var (
	ErrFetch          = errors.New("fetch failed")
	ErrInstall        = errors.New("install failed")
	ErrProcessControl = errors.New("process control failed")
	ErrDump           = errors.New("dump failed")
	ErrUpload         = errors.New("upload failed")
	ErrPrune          = errors.New("prune failed")
	ErrTimeout        = errors.New("phase timed out")
	ErrConfig         = errors.New("invalid configuration")

	// ErrSkipped — запуск пропущен: guard держит другой запуск.
	// Это не ошибка выполнения.
	ErrSkipped = errors.New("run skipped: another run holds the guard")

	// ErrArtifactExists — дамп за эту секунду уже существует.
	ErrArtifactExists = errors.New("artifact already exists")

	// ErrEmptyDump — дамп пустой.
	ErrEmptyDump = errors.New("dump produced an empty file")
)

var kindSentinels = map[domain.ErrorKind]error{
	domain.ErrorKindFetch:          ErrFetch,
	domain.ErrorKindInstall:        ErrInstall,
	domain.ErrorKindProcessControl: ErrProcessControl,
	domain.ErrorKindDump:           ErrDump,
	domain.ErrorKindUpload:         ErrUpload,
	domain.ErrorKindPrune:          ErrPrune,
	domain.ErrorKindTimeout:        ErrTimeout,
	domain.ErrorKindConfig:         ErrConfig,
	domain.ErrorKindGuardSkip:      ErrSkipped,
}

// PhaseError — ошибка фазы оркестратора.
type PhaseError struct {
	// Kind — категория ошибки.
	Kind domain.ErrorKind

	// Phase — фаза, в которой произошла ошибка.
	Phase string

	// Output — хвост вывода внешнего инструмента (без секретов).
	Output string

	// NotFound — менеджер процессов не знает процесса (только для process_control).
	NotFound bool

	// Err — исходная ошибка.
	Err error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Kind, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с sentinel её категории.
func (e *PhaseError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf возвращает категорию ошибки.
// Для ошибок вне таксономии возвращает ErrorKindNone.
func KindOf(err error) domain.ErrorKind {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return domain.ErrorKindNone
}

// isTimeout проверяет, что ошибка вызвана истечением таймаута фазы.
func isTimeout(err error) bool {
	return errors.Is(err, tools.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// phaseError создаёт PhaseError; таймаут превращается в ErrorKindTimeout.
func phaseError(kind domain.ErrorKind, phase, output string, err error) *PhaseError {
	if isTimeout(err) {
		kind = domain.ErrorKindTimeout
	}
	return &PhaseError{Kind: kind, Phase: phase, Output: output, Err: err}
}
