package secrets

import "errors"

// Ошибки разрешения секретов.
var (
	// ErrRawSecret — вместо ссылки указан сам секрет.
	ErrRawSecret = errors.New("credential must be a reference (env:, file:, keyring:), not a literal")

	// ErrUnknownScheme — неизвестная схема ссылки.
	ErrUnknownScheme = errors.New("unknown credential scheme")

	// ErrNotFound — секрет не найден.
	ErrNotFound = errors.New("credential not found")

	// ErrInsecureFile — файл с секретом доступен группе или остальным.
	ErrInsecureFile = errors.New("credential file permissions too open")
)
