package guard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// FileGuard — guard на основе flock.
type FileGuard struct {
	dir string
}

// NewFileGuard создаёт guard с каталогом блокировок dir.
func NewFileGuard(dir string) (*FileGuard, error) {
	if dir == "" {
		return nil, fmt.Errorf("lock dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	return &FileGuard{dir: dir}, nil
}

// TryAcquire реализует Guard.
//
// Файл блокировки не удаляется при освобождении: удаление открывает
// гонку между процессами, держащими дескрипторы разных inode.
func (g *FileGuard) TryAcquire(ctx context.Context, key string) (Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(g.dir, sanitizeKey(key)+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, fmt.Errorf("%w: %s", ErrHeld, key)
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	// pid владельца — только для оператора
	if err := f.Truncate(0); err == nil {
		f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	return &fileLease{file: f}, nil
}

type fileLease struct {
	file *os.File
}

func (l *fileLease) Release(context.Context) error {
	if l.file == nil {
		return nil
	}
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return fmt.Errorf("unlock: %w", unlockErr)
	}
	return closeErr
}
