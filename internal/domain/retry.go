package domain

import "time"

// RetryState — состояние повторных попыток одной операции.
// Живёт только на время операции.
type RetryState struct {
	OperationID string
	Attempt     int
	LastError   error
	NextBackoff time.Duration
}

// CanRetry проверяет, остались ли попытки.
func (s *RetryState) CanRetry(maxAttempts int) bool {
	return s.Attempt < maxAttempts
}

// RecordFailure фиксирует неудачную попытку.
func (s *RetryState) RecordFailure(err error, next time.Duration) {
	s.LastError = err
	s.NextBackoff = next
}
