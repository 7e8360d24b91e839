package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DumpRequest — параметры дампа одной базы.
type DumpRequest struct {
	Database string
	Host     string
	Port     int
	User     string
	Password string
}

// MySQLDump создаёт дамп через mysqldump.
type MySQLDump struct {
	runner Runner
	cmd    string

	// TempDir — каталог для option file. Пусто — os.TempDir().
	TempDir string
}

// NewMySQLDump создаёт клиент. cmd — путь к mysqldump.
func NewMySQLDump(runner Runner, cmd string) *MySQLDump {
	if cmd == "" {
		cmd = "mysqldump"
	}
	return &MySQLDump{runner: runner, cmd: cmd}
}

// Dump пишет консистентный дамп базы в w.
//
// Пароль передаётся через временный option file с правами 0600
// (--defaults-extra-file), а не через аргументы: аргументы видны
// другим процессам хоста. Файл удаляется на любом пути выхода.
func (m *MySQLDump) Dump(ctx context.Context, req DumpRequest, w io.Writer) (string, error) {
	if req.Database == "" {
		return "", fmt.Errorf("%w: database cannot be empty", ErrInvalidArgument)
	}

	optFile, err := writeOptionFile(m.TempDir, req)
	if err != nil {
		return "", err
	}
	defer os.Remove(optFile)

	// --defaults-extra-file обязан быть первым аргументом.
	args := []string{
		"--defaults-extra-file=" + optFile,
		"--single-transaction",
		"--quick",
		"--routines",
		"--triggers",
		"--no-tablespaces",
		req.Database,
	}

	return m.runner.Run(ctx, Command{
		Name:   m.cmd,
		Args:   args,
		Stdout: w,
	})
}

// writeOptionFile создаёт option file с секцией [client].
func writeOptionFile(dir string, req DumpRequest) (string, error) {
	f, err := os.CreateTemp(dir, "keeper-my-*.cnf")
	if err != nil {
		return "", fmt.Errorf("create option file: %w", err)
	}
	name := f.Name()

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("chmod option file: %w", err)
	}

	var b strings.Builder
	b.WriteString("[client]\n")
	fmt.Fprintf(&b, "user=%s\n", quoteOption(req.User))
	fmt.Fprintf(&b, "password=%s\n", quoteOption(req.Password))
	if req.Host != "" {
		fmt.Fprintf(&b, "host=%s\n", quoteOption(req.Host))
	}
	if req.Port > 0 {
		fmt.Fprintf(&b, "port=%s\n", strconv.Itoa(req.Port))
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write option file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("close option file: %w", err)
	}
	return name, nil
}

// quoteOption экранирует значение для option file MySQL.
func quoteOption(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(v) + `"`
}
