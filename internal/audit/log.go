package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/secrets"
)

// Sink — приёмник записей аудита.
type Sink interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// Log — файловый журнал аудита.
//
// Дескриптор открывается один раз при старте процесса (Open)
// и освобождается при завершении (Close).
type Log struct {
	path     string
	redactor *secrets.Redactor
	now      func() time.Time

	mu     sync.Mutex
	file   *os.File
	closed bool
}

// Option — опция журнала.
type Option func(*Log)

// WithClock задаёт источник времени для записей без Timestamp.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Open открывает (или создаёт) журнал по пути path.
func Open(path string, redactor *secrets.Redactor, opts ...Option) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	l := &Log{
		path:     path,
		redactor: redactor,
		now:      time.Now,
		file:     f,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path возвращает путь к файлу журнала.
func (l *Log) Path() string {
	return l.path
}

// Append добавляет запись в журнал.
//
// Сообщение и строковые детали проходят через Redactor. Строка пишется
// целиком одним вызовом Write под flock(LOCK_EX).
func (l *Log) Append(ctx context.Context, entry domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	entry = Sanitize(l.redactor, entry)

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	fd := int(l.file.Fd())
	if err := flock(fd, unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock audit log: %w", err)
	}
	defer flock(fd, unix.LOCK_UN)

	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Close освобождает дескриптор журнала.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// flock повторяет вызов при EINTR.
func flock(fd, how int) error {
	for {
		err := unix.Flock(fd, how)
		if err != unix.EINTR {
			return err
		}
	}
}

// Sanitize нормализует время записи в UTC и скрывает секреты
// в сообщении и строковых деталях.
func Sanitize(r *secrets.Redactor, entry domain.AuditEntry) domain.AuditEntry {
	entry.Timestamp = entry.Timestamp.UTC()
	entry.Message = r.Redact(entry.Message)
	entry.Details = redactDetails(r, entry.Details)
	return entry
}

// redactDetails возвращает копию details со скрытыми секретами.
func redactDetails(r *secrets.Redactor, details map[string]any) map[string]any {
	if len(details) == 0 {
		return details
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = redactValue(r, v)
	}
	return out
}

func redactValue(r *secrets.Redactor, v any) any {
	switch val := v.(type) {
	case string:
		return r.Redact(val)
	case map[string]any:
		return redactDetails(r, val)
	case []string:
		out := make([]string, len(val))
		for i, s := range val {
			out[i] = r.Redact(s)
		}
		return out
	default:
		return v
	}
}
