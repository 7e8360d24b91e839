package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// NPM устанавливает зависимости Node.js проекта.
type NPM struct {
	runner Runner
	cmd    string
}

// NewNPM создаёт установщик. cmd — путь к npm (по умолчанию "npm").
func NewNPM(runner Runner, cmd string) *NPM {
	if cmd == "" {
		cmd = "npm"
	}
	return &NPM{runner: runner, cmd: cmd}
}

// Install устанавливает зависимости в dest.
// При наличии package-lock.json используется воспроизводимый "npm ci".
func (n *NPM) Install(ctx context.Context, dest string) (string, error) {
	args := []string{"install", "--no-audit", "--no-fund"}
	if _, err := os.Stat(filepath.Join(dest, "package-lock.json")); err == nil {
		args = []string{"ci", "--no-audit", "--no-fund"}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	return n.runner.Run(ctx, Command{
		Name: n.cmd,
		Args: args,
		Dir:  dest,
	})
}
