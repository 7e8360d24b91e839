// Package orchestrator содержит оркестраторы deploy и backup.
//
// Оркестратор — последовательность вызовов внешних инструментов с
// записью исхода каждой фазы в журнал аудита. Фазы выполняются строго
// по очереди; первая ошибка прерывает оставшиеся фазы.
//
// Deployer:
//
//	start → fetch (clone | pull) → install → restart → end
//
// BackupOrchestrator:
//
//	guard → dump → upload (retry с backoff) → resume → prune → end
//
// Каждая ошибка — *PhaseError с явной категорией (domain.ErrorKind).
// Повторяется только upload; остальные ошибки возвращаются сразу, без
// скрытых повторов: устаревший pull или наполовину установленные
// зависимости не должны маскироваться.
package orchestrator
