package audit

import "errors"

// Ошибки журнала.
var (
	// ErrClosed — журнал уже закрыт.
	ErrClosed = errors.New("audit log closed")

	// ErrInvalidTail — некорректное количество записей для Tail.
	ErrInvalidTail = errors.New("tail count must be positive")
)
