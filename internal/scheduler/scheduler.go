package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Keeper/internal/telemetry"
)

// ErrNotStarted — Stop вызван до Start.
var ErrNotStarted = errors.New("scheduler not started")

// Job — запуск, который выполняет планировщик (бэкап).
type Job func(ctx context.Context) error

// Config — конфигурация Scheduler.
type Config struct {
	// Expr — cron-выражение (default: @hourly).
	Expr string

	// Job — что запускать.
	Job Job

	Logger *slog.Logger
}

// Scheduler запускает Job по расписанию.
//
// Триггер не ждёт завершения Job: каждый запуск идёт в своей горутине.
// Наложение запусков предотвращает guard внутри самого Job.
type Scheduler struct {
	expr   string
	job    Job
	logger *slog.Logger

	cron      *cron.Cron
	ctx       context.Context
	wg        sync.WaitGroup
	inFlight  atomic.Int64
	triggered atomic.Int64
	started   atomic.Bool

	mu           sync.Mutex
	lastFinished time.Time
	lastErr      error
}

// Status — состояние планировщика для /status.
type Status struct {
	Expr           string     `json:"expr"`
	NextRun        time.Time  `json:"next_run"`
	InFlight       int64      `json:"in_flight"`
	Triggered      int64      `json:"triggered"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// New создаёт новый Scheduler.
func New(cfg Config) (*Scheduler, error) {
	expr := cfg.Expr
	if expr == "" {
		expr = DefaultExpr
	}
	if err := ValidateCronExpr(expr); err != nil {
		return nil, err
	}
	if cfg.Job == nil {
		return nil, fmt.Errorf("scheduler job is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		expr:   expr,
		job:    cfg.Job,
		logger: logger,
		cron:   cron.New(cron.WithParser(cronParser), cron.WithLocation(time.UTC)),
	}, nil
}

// Start регистрирует расписание и запускает cron.
// ctx передаётся во все запуски Job; его отмена прерывает их.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx

	if _, err := s.cron.AddFunc(s.expr, s.Trigger); err != nil {
		return fmt.Errorf("add cron job: %w", err)
	}

	s.cron.Start()
	s.started.Store(true)

	next, _ := NextRun(s.expr, time.Now())
	s.logger.Info("scheduler started", "expr", s.expr, "next_run", next)
	return nil
}

// Trigger запускает Job в отдельной горутине и сразу возвращается.
func (s *Scheduler) Trigger() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	telemetry.ObserveSchedulerTrigger()
	s.triggered.Add(1)
	s.wg.Add(1)
	s.inFlight.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.inFlight.Add(-1)

		start := time.Now()
		s.logger.Info("scheduled run triggered")

		err := s.job(ctx)
		s.recordResult(err)

		if err != nil {
			s.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Info("scheduled run finished", "duration", time.Since(start))
	}()
}

func (s *Scheduler) recordResult(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFinished = time.Now().UTC()
	s.lastErr = err
}

// Status возвращает текущее состояние.
func (s *Scheduler) Status() Status {
	next, _ := NextRun(s.expr, time.Now())

	st := Status{
		Expr:      s.expr,
		NextRun:   next,
		InFlight:  s.inFlight.Load(),
		Triggered: s.triggered.Load(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastFinished.IsZero() {
		finished := s.lastFinished
		st.LastFinishedAt = &finished
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

// InFlight возвращает число выполняющихся запусков.
func (s *Scheduler) InFlight() int64 {
	return s.inFlight.Load()
}

// Stop останавливает расписание и ждёт завершения запусков
// не дольше, чем позволяет ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	s.cron.Stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for %d in-flight runs: %w", s.InFlight(), ctx.Err())
	}
}
