package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PM2 управляет процессами через pm2 CLI.
type PM2 struct {
	runner Runner
	cmd    string
}

// NewPM2 создаёт клиент. cmd — путь к pm2 (по умолчанию "pm2").
func NewPM2(runner Runner, cmd string) *PM2 {
	if cmd == "" {
		cmd = "pm2"
	}
	return &PM2{runner: runner, cmd: cmd}
}

// Restart перезапускает процесс по имени.
// Неизвестный процесс — ErrProcessNotFound.
func (p *PM2) Restart(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: process name cannot be empty", ErrInvalidArgument)
	}

	out, err := p.runner.Run(ctx, Command{
		Name: p.cmd,
		Args: []string{"restart", name},
	})

	// pm2 печатает "Process or Namespace <name> not found" и
	// в некоторых версиях выходит с кодом 0.
	if isNotFound(out) {
		return out, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && isNotFound(cmdErr.Output) {
			return out, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
		}
		return out, err
	}
	return out, nil
}

func isNotFound(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "not found") && strings.Contains(lower, "process")
}
