package repo

import "errors"

// Ошибки репозитория.
var (
	// ErrNoDSN — строка подключения не задана.
	ErrNoDSN = errors.New("database dsn is empty")

	// ErrInvalidFilter — некорректный фильтр выборки.
	ErrInvalidFilter = errors.New("invalid filter")
)
