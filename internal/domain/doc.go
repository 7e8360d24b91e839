// Package domain содержит доменные модели Keeper.
//
// Основные сущности:
//   - DeploymentRecord — результат одного запуска deploy
//   - BackupArtifact — один файл бэкапа (локальная и удалённая копия)
//   - AuditEntry — запись в append-only журнале аудита
//   - RetryState — состояние повторных попыток загрузки
//
// Каждая запись имеет ровно один терминальный исход (success, failure
// или skipped). Повторный переход в терминальное состояние запрещён.
package domain
