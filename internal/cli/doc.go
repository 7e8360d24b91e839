// Package cli реализует команды keeper.
//
// # Обзор
//
// CLI — точка входа для операторов и cron. Каждая команда загружает
// конфигурацию, собирает компоненты через app.Open и выполняет одну
// операцию.
//
// # Команды
//
//   - deploy           — fetch, install, restart
//   - backup           — dump, upload, prune
//   - audit tail       — последние записи журнала аудита
//   - migrate          — миграции схемы зеркала аудита
//   - events watch     — поток событий из keeper.events
//
// # Коды выхода
//
// ExitCode отображает категорию ошибки в код выхода:
// 0 успех или skipped, 2 конфигурация, 10 fetch, 11 install, 12 restart,
// 20 dump, 21 upload, 22 prune, 30 timeout, 1 прочее. Последняя строка
// stderr при ошибке: "<command> failed: <kind>: <message>".
//
// # Output
//
// Данные выводятся в stdout (таблица или JSON с флагом --json),
// сообщения — в stderr. Это позволяет использовать pipe:
// keeper audit tail --json | jq .
package cli
