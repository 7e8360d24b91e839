// Package tools оборачивает внешние инструменты командной строки.
//
// Реализации:
//   - Git — clone / pull / rev-parse
//   - NPM — установка зависимостей (npm ci или npm install)
//   - PM2 — перезапуск процесса по имени
//   - MySQLDump — дамп базы MySQL
//
// Все команды запускаются через Runner. ExecRunner запускает процесс в
// собственной группе процессов: при таймауте или отмене контекста
// убивается вся группа, а WaitDelay ограничивает ожидание закрытия pipe.
//
// Секреты никогда не передаются в аргументах командной строки.
package tools
