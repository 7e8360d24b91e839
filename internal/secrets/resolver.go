package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Схемы ссылок.
const (
	SchemeEnv     = "env"
	SchemeFile    = "file"
	SchemeKeyring = "keyring"
)

// Ref — разобранная ссылка на секрет.
type Ref struct {
	Scheme string
	Target string
}

// String возвращает ссылку в исходном виде. Сам секрет не содержит.
func (r Ref) String() string {
	return r.Scheme + ":" + r.Target
}

// ParseRef разбирает ссылку вида "scheme:target".
func ParseRef(raw string) (Ref, error) {
	scheme, target, ok := strings.Cut(raw, ":")
	if !ok || target == "" {
		return Ref{}, ErrRawSecret
	}
	switch scheme {
	case SchemeEnv, SchemeFile:
	case SchemeKeyring:
		if _, _, ok := strings.Cut(target, "/"); !ok {
			return Ref{}, fmt.Errorf("%w: keyring reference must be keyring:service/user", ErrUnknownScheme)
		}
	default:
		return Ref{}, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
	return Ref{Scheme: scheme, Target: target}, nil
}

// Resolver разрешает ссылки в значения секретов.
type Resolver struct {
	lookupEnv  func(string) (string, bool)
	keyringGet func(service, user string) (string, error)
}

// NewResolver создаёт Resolver с системными источниками.
func NewResolver() *Resolver {
	return &Resolver{
		lookupEnv:  os.LookupEnv,
		keyringGet: keyring.Get,
	}
}

// Resolve возвращает значение секрета по ссылке.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref, err := ParseRef(raw)
	if err != nil {
		return "", err
	}

	switch ref.Scheme {
	case SchemeEnv:
		v, ok := r.lookupEnv(ref.Target)
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return v, nil

	case SchemeFile:
		return readSecretFile(ref.Target)

	case SchemeKeyring:
		service, user, _ := strings.Cut(ref.Target, "/")
		v, err := r.keyringGet(service, user)
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
			}
			return "", fmt.Errorf("keyring %s: %w", ref, err)
		}
		return v, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownScheme, ref.Scheme)
}

// readSecretFile читает секрет из файла, проверяя права доступа.
func readSecretFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: file:%s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat secret file: %w", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return "", fmt.Errorf("%w: %s has mode %o", ErrInsecureFile, path, info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	v := strings.TrimRight(string(data), "\r\n")
	if v == "" {
		return "", fmt.Errorf("%w: file:%s is empty", ErrNotFound, path)
	}
	return v, nil
}
