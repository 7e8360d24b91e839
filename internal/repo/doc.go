// Package repo — хранилище Keeper в PostgreSQL.
//
// Содержит зеркало журнала аудита (таблица audit_entries) и миграции
// схемы. Основной журнал — JSONL файл; зеркало опционально и включается
// параметром audit.mirror_dsn.
package repo
