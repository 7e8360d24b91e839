// Package mq публикует события Keeper в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange и очередей наблюдателей
//   - publisher.go  — публикация событий, реализация orchestrator.Notifier
//   - consumer.go   — потребление событий (keeper events watch)
//
// Типы событий:
//   - deploy.completed — терминальная запись deploy
//   - backup.completed — терминальный артефакт backup
//
// Exchange:
//   - keeper.events (topic)
//
// Публикация не влияет на исход операции: ошибки только логируются.
package mq
