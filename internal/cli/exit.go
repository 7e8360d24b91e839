package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/orchestrator"
)

// Коды выхода.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitConfig         = 2
	ExitFetch          = 10
	ExitInstall        = 11
	ExitProcessControl = 12
	ExitDump           = 20
	ExitUpload         = 21
	ExitPrune          = 22
	ExitTimeout        = 30
)

var kindExitCodes = map[domain.ErrorKind]int{
	domain.ErrorKindNone:           ExitError,
	domain.ErrorKindConfig:         ExitConfig,
	domain.ErrorKindFetch:          ExitFetch,
	domain.ErrorKindInstall:        ExitInstall,
	domain.ErrorKindProcessControl: ExitProcessControl,
	domain.ErrorKindDump:           ExitDump,
	domain.ErrorKindUpload:         ExitUpload,
	domain.ErrorKindPrune:          ExitPrune,
	domain.ErrorKindTimeout:        ExitTimeout,
	domain.ErrorKindGuardSkip:      ExitOK,
}

// ExitCode возвращает код выхода для ошибки команды.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if code, ok := kindExitCodes[errorKind(err)]; ok {
		return code
	}
	return ExitError
}

// FailureLine формирует последнюю строку stderr: "<command> failed: <kind>: <message>".
func FailureLine(command string, err error) string {
	kind := errorKind(err)

	msg := err.Error()
	var pe *orchestrator.PhaseError
	if errors.As(err, &pe) {
		msg = pe.Err.Error()
	}

	label := string(kind)
	if kind == domain.ErrorKindNone {
		label = "error"
	}
	return fmt.Sprintf("%s failed: %s: %s", command, label, msg)
}

func errorKind(err error) domain.ErrorKind {
	if kind := orchestrator.KindOf(err); kind != domain.ErrorKindNone {
		return kind
	}
	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return domain.ErrorKindConfig
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrorKindTimeout
	}
	return domain.ErrorKindNone
}
