// Keeper CLI — запуск deploy и backup вручную или из cron.
//
// Использование:
//
//	keeper [--config PATH] [--json] <command> [flags]
//
// Команды:
//
//	deploy        Fetch, install, restart
//	backup        Dump, upload, prune
//	audit tail    Последние записи журнала аудита
//	migrate       Миграции схемы зеркала аудита
//	events watch  Поток событий keeper.events
//
// Код выхода определяет категорию ошибки (см. internal/cli).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/Keeper/internal/cli"
	"github.com/shaiso/Keeper/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// Логи — в stderr, stdout остаётся для данных.
	logger := telemetry.SetupLogger(os.Stderr, "keeper")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx = telemetry.WithLogger(ctx, logger)

	rootCmd := cli.NewRootCmd(version)
	cmd, err := rootCmd.ExecuteContextC(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FailureLine(cli.CommandName(cmd), err))
		os.Exit(cli.ExitCode(err))
	}
}
