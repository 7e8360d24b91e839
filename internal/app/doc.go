// Package app собирает компоненты Keeper из конфигурации.
//
// App владеет ресурсами процесса: журналом аудита, пулами соединений,
// AMQP соединением. CLI открывает App на одну команду, демон
// планировщика держит его всё время работы.
//
//	a, err := app.Open(ctx, cfg, logger)
//	defer a.Close()
//
//	runner, err := a.BackupRunner(ctx)
//	art, err := runner.Run(ctx)
package app
