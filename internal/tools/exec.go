package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	// defaultOutputLimit — сколько последних байт вывода сохраняется.
	defaultOutputLimit = 64 * 1024

	// defaultWaitDelay — сколько ждать закрытия pipe после kill.
	defaultWaitDelay = 5 * time.Second
)

// Command — описание запуска внешней команды.
type Command struct {
	Name string
	Args []string
	Dir  string

	// Env — дополнительные переменные окружения (к os.Environ()).
	Env []string

	// Stdout — если задан, stdout пишется сюда, а в Output попадает
	// только stderr. Используется для потоковой записи дампа.
	Stdout io.Writer
}

// Runner запускает внешние команды.
type Runner interface {
	// Run возвращает объединённый вывод (хвост) и ошибку.
	// Ненулевой код выхода — *CommandError, таймаут — ErrTimeout.
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner — Runner на основе os/exec.
type ExecRunner struct {
	OutputLimit int
	WaitDelay   time.Duration
}

// NewExecRunner создаёт ExecRunner с настройками по умолчанию.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		OutputLimit: defaultOutputLimit,
		WaitDelay:   defaultWaitDelay,
	}
}

// Run реализует Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, error) {
	if c.Name == "" {
		return "", fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)

	// Своя группа процессов: kill достаёт и дочерние процессы
	// (npm → node, pm2 → daemon client).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = r.WaitDelay

	out := newTailBuffer(r.OutputLimit)
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	} else {
		cmd.Stdout = out
	}
	cmd.Stderr = out

	err := cmd.Run()
	output := strings.TrimSpace(out.String())

	if err == nil {
		return output, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return output, fmt.Errorf("%s: %w", c.Name, ErrTimeout)
		}
		return output, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, &CommandError{
			Name:     c.Name,
			ExitCode: exitErr.ExitCode(),
			Output:   output,
			Err:      err,
		}
	}

	return output, fmt.Errorf("run %s: %w", c.Name, err)
}

// tailBuffer хранит не более limit последних байт.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = defaultOutputLimit
	}
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// LastLines возвращает не более n последних строк s.
func LastLines(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
