package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/secrets"
)

// Tee пишет в основной журнал и дублирует во вторичный приёмник.
//
// Ошибка основного журнала возвращается вызывающему. Ошибка вторичного
// только логируется.
type Tee struct {
	primary   Sink
	secondary Sink
	redactor  *secrets.Redactor
	logger    *slog.Logger
}

// NewTee создаёт Tee. Если secondary == nil, Tee эквивалентен primary.
// Вторичный приёмник получает запись уже без секретов.
func NewTee(primary, secondary Sink, redactor *secrets.Redactor, logger *slog.Logger) *Tee {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tee{primary: primary, secondary: secondary, redactor: redactor, logger: logger}
}

// Append реализует Sink.
func (t *Tee) Append(ctx context.Context, entry domain.AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := t.primary.Append(ctx, entry); err != nil {
		return err
	}
	if t.secondary == nil {
		return nil
	}
	if err := t.secondary.Append(ctx, Sanitize(t.redactor, entry)); err != nil {
		t.logger.Warn("failed to mirror audit entry",
			"run_id", entry.RunID,
			"phase", entry.Phase,
			"error", err,
		)
	}
	return nil
}
