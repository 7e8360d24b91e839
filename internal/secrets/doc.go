// Package secrets разрешает ссылки на секреты и скрывает их в выводе.
//
// Поддерживаемые ссылки:
//   - env:NAME            — переменная окружения
//   - file:/path          — файл, недоступный группе и остальным (0600/0400)
//   - keyring:service/user — системный keyring (zalando/go-keyring)
//
// Пароль в открытом виде в конфигурации не принимается.
package secrets
