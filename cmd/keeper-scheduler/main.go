// Keeper Scheduler — запускает backup по cron-расписанию.
//
// Scheduler:
//   - Запускает backup по расписанию schedule.cron (default: @hourly)
//   - Не ждёт завершения запуска: наложение отсекает guard
//   - Отдаёт /healthz, /metrics, /status и POST /trigger на SCHED_PORT (default: 8081)
//   - При SIGINT/SIGTERM ждёт завершения идущих запусков
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Keeper/internal/api"
	"github.com/shaiso/Keeper/internal/app"
	"github.com/shaiso/Keeper/internal/cli"
	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/orchestrator"
	"github.com/shaiso/Keeper/internal/scheduler"
	"github.com/shaiso/Keeper/internal/telemetry"
)

// shutdownTimeout — сколько ждать идущие запуски после сигнала.
const shutdownTimeout = 10 * time.Minute

func main() {
	logger := telemetry.SetupLogger(os.Stdout, "keeper-scheduler")
	logger.Info("starting keeper-scheduler")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(cli.ExitCode(err))
	}

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	runner, err := a.BackupRunner(ctx)
	if err != nil {
		logger.Error("failed to build backup runner", "error", err)
		os.Exit(cli.ExitCode(err))
	}

	// Запуски не прерываются сигналом сразу: им даётся shutdownTimeout.
	runCtx, cancelRuns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelRuns()

	sched, err := scheduler.New(scheduler.Config{
		Expr: cfg.Schedule.Cron,
		Job: func(ctx context.Context) error {
			_, err := runner.Run(ctx)
			if errors.Is(err, orchestrator.ErrSkipped) {
				return nil
			}
			return err
		},
		Logger: logger,
	})
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(cli.ExitConfig)
	}

	if err := sched.Start(runCtx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz, /metrics, /status, /trigger
	mux := http.NewServeMux()
	api.NewHandler(sched, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Schedule.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", "error", err)
		}

		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Error("in-flight runs did not finish, cancelling", "error", err)
			cancelRuns()
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("keeper-scheduler stopped with error", "error", err)
		a.Close()
		os.Exit(1)
	}
	logger.Info("keeper-scheduler stopped")
}
