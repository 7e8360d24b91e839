package domain

import "errors"

// ErrAlreadyFinal — запись уже находится в терминальном состоянии.
var ErrAlreadyFinal = errors.New("record already has a terminal outcome")

// Outcome — исход операции или фазы.
//
// Жизненный цикл:
//
//	STARTED → SUCCESS
//	        ↘ FAILURE
//	        ↘ SKIPPED (guard уже захвачен другим запуском)
type Outcome string

const (
	// OutcomeStarted — операция начата (маркер начала в журнале).
	OutcomeStarted Outcome = "started"

	// OutcomeSuccess — операция успешно завершена.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure — операция завершилась ошибкой.
	OutcomeFailure Outcome = "failure"

	// OutcomeSkipped — запуск пропущен, это не ошибка.
	OutcomeSkipped Outcome = "skipped"
)

// IsTerminal возвращает true, если исход финальный.
func (o Outcome) IsTerminal() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// OperationKind — тип операции в журнале аудита.
type OperationKind string

const (
	OperationDeploy OperationKind = "deploy"
	OperationBackup OperationKind = "backup"
)

// ErrorKind — категория ошибки.
// Заменяет разбор exit code и строк вывода явным перечислением.
type ErrorKind string

const (
	ErrorKindNone           ErrorKind = ""
	ErrorKindFetch          ErrorKind = "fetch"
	ErrorKindInstall        ErrorKind = "install"
	ErrorKindProcessControl ErrorKind = "process_control"
	ErrorKindDump           ErrorKind = "dump"
	ErrorKindUpload         ErrorKind = "upload"
	ErrorKindPrune          ErrorKind = "prune"
	ErrorKindTimeout        ErrorKind = "timeout"
	ErrorKindConfig         ErrorKind = "config"
	ErrorKindGuardSkip      ErrorKind = "guard_skip"
)

// String возвращает строковое представление ErrorKind.
func (k ErrorKind) String() string {
	if k == ErrorKindNone {
		return "none"
	}
	return string(k)
}

// IsFailure возвращает false для ErrorKindGuardSkip: пропуск запуска
// ошибкой не считается.
func (k ErrorKind) IsFailure() bool {
	return k != ErrorKindNone && k != ErrorKindGuardSkip
}
