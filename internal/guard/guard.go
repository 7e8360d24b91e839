package guard

import (
	"context"
	"errors"
	"regexp"
)

// ErrHeld — guard уже захвачен другим запуском.
var ErrHeld = errors.New("guard is held by another run")

// Guard захватывает эксклюзивную блокировку по ключу без ожидания.
type Guard interface {
	TryAcquire(ctx context.Context, key string) (Lease, error)
}

// Lease — захваченная блокировка.
type Lease interface {
	Release(ctx context.Context) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// sanitizeKey делает ключ пригодным для имени файла.
func sanitizeKey(key string) string {
	return unsafeKeyChars.ReplaceAllString(key, "_")
}
