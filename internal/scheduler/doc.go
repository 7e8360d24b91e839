// Package scheduler запускает бэкап по cron-расписанию.
//
// Структура:
//   - scheduler.go — Scheduler (Start, Trigger, Stop)
//   - cron.go      — разбор cron-выражений и вычисление следующего запуска
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Expr:   "@hourly",
//	    Job:    func(ctx context.Context) error { _, err := runner.Run(ctx); return err },
//	    Logger: logger,
//	})
//	sched.Start(ctx)
//	defer sched.Stop(shutdownCtx)
//
// Наложение запусков:
//
// Scheduler не ждёт завершения предыдущего запуска. Если бэкап идёт
// дольше интервала, следующий запуск упирается в guard и завершается
// как skipped.
package scheduler
