package orchestrator

import (
	"context"
	"time"
)

// RetryPolicy — политика повторов загрузки.
type RetryPolicy struct {
	// MaxAttempts — общее число попыток (включая первую). Default: 3.
	MaxAttempts int

	// InitialDelay — задержка перед второй попыткой. Default: 1s.
	InitialDelay time.Duration

	// MaxDelay — верхняя граница задержки. Default: 30s.
	MaxDelay time.Duration
}

// withDefaults возвращает политику с заполненными значениями по умолчанию.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 30 * time.Second
	}
	return p
}

// Backoff вычисляет задержку после неудачной попытки attempt (с 1).
//
// delay = initialDelay * 2^(attempt-1), capped at maxDelay
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	p = p.withDefaults()

	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay > p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// sleepContext ждёт d или отмены контекста.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
