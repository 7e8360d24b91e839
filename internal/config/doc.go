// Package config загружает статическую конфигурацию Keeper.
//
// Источники (в порядке приоритета):
//  1. переменные окружения KEEPER_* (caarlos0/env)
//  2. YAML файл (KEEPER_CONFIG, по умолчанию /etc/keeper/keeper.yaml)
//  3. значения по умолчанию из Defaults()
//
// Пароль базы данных в конфигурации не хранится: указывается только
// ссылка на секрет (database.credential_ref), см. пакет secrets.
package config
