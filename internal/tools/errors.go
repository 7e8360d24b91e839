package tools

import (
	"errors"
	"fmt"
)

// Ошибки инструментов.
var (
	// ErrTimeout — команда не завершилась за отведённое время.
	ErrTimeout = errors.New("command timed out")

	// ErrProcessNotFound — менеджер процессов не знает такого процесса.
	ErrProcessNotFound = errors.New("process not found")

	// ErrInvalidArgument — некорректный аргумент вызова.
	ErrInvalidArgument = errors.New("invalid argument")
)

// CommandError — команда завершилась с ненулевым кодом.
type CommandError struct {
	Name     string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s exited with code %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Name, e.ExitCode, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
