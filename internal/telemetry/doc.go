// Package telemetry обеспечивает наблюдаемость Keeper.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики оркестраторов и планировщика
//
// Операционные логи (slog) не заменяют журнал аудита: журнал —
// долговременная запись исходов, логи — диагностика процесса.
package telemetry
