// Package guard реализует mutual-exclusion guard для запусков бэкапа.
//
// Guard захватывается по ключу (имя базы данных) до начала дампа. Если
// ключ уже занят другим запуском, TryAcquire сразу возвращает ErrHeld:
// запуск пропускается, а не ждёт.
//
// Реализации:
//   - FileGuard     — flock на <lock_dir>/<key>.lock (один хост)
//   - PostgresGuard — pg_try_advisory_lock на выделенном соединении
//   - RedisGuard    — SET NX PX с токеном и compare-and-delete при освобождении
//
// Блокировки FileGuard и PostgresGuard освобождаются ОС/сервером при
// смерти процесса. RedisGuard полагается на TTL.
package guard
