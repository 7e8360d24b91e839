// Package api содержит служебный HTTP сервер демона планировщика.
//
// Структура:
//   - handler.go    — Handler (статус, ручной запуск)
//   - routes.go     — регистрация маршрутов
//   - middleware.go — middleware (logging, recovery)
//   - response.go   — унифицированные JSON-ответы
//
// Маршруты:
//   - GET  /healthz — liveness
//   - GET  /metrics — метрики Prometheus
//   - GET  /status  — расписание, идущие запуски, результат последнего
//   - POST /trigger — внеочередной запуск бэкапа
package api
