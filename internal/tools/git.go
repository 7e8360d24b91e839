package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Git — клиент системы контроля версий на основе git CLI.
type Git struct {
	runner Runner
	cmd    string
}

// NewGit создаёт клиент. cmd — путь к git (по умолчанию "git").
func NewGit(runner Runner, cmd string) *Git {
	if cmd == "" {
		cmd = "git"
	}
	return &Git{runner: runner, cmd: cmd}
}

// gitEnv запрещает git интерактивно спрашивать учётные данные.
var gitEnv = []string{"GIT_TERMINAL_PROMPT=0"}

// Clone клонирует ветку branch репозитория url в каталог dest.
func (g *Git) Clone(ctx context.Context, url, branch, dest string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%w: repository URL cannot be empty", ErrInvalidArgument)
	}
	if dest == "" {
		return "", fmt.Errorf("%w: destination cannot be empty", ErrInvalidArgument)
	}

	// git создаёт сам dest, но не родительские каталоги.
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create parent of %s: %w", dest, err)
	}

	return g.runner.Run(ctx, Command{
		Name: g.cmd,
		Args: []string{"clone", "--branch", branch, "--single-branch", url, dest},
		Env:  gitEnv,
	})
}

// Pull обновляет рабочую копию dest до origin/branch.
//
// Используется --ff-only: расходящаяся история — ошибка, а не merge.
func (g *Git) Pull(ctx context.Context, dest, branch string) (string, error) {
	if dest == "" {
		return "", fmt.Errorf("%w: destination cannot be empty", ErrInvalidArgument)
	}

	return g.runner.Run(ctx, Command{
		Name: g.cmd,
		Args: []string{"-C", dest, "pull", "--ff-only", "origin", branch},
		Env:  gitEnv,
	})
}

// Head возвращает хэш текущего commit в dest.
func (g *Git) Head(ctx context.Context, dest string) (string, error) {
	out, err := g.runner.Run(ctx, Command{
		Name: g.cmd,
		Args: []string{"-C", dest, "rev-parse", "HEAD"},
		Env:  gitEnv,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
