package orchestrator

import (
	"context"
	"io"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/tools"
)

// VCS — клиент системы контроля версий.
type VCS interface {
	Clone(ctx context.Context, url, branch, dest string) (string, error)
	Pull(ctx context.Context, dest, branch string) (string, error)
	Head(ctx context.Context, dest string) (string, error)
}

// Installer устанавливает зависимости.
type Installer interface {
	Install(ctx context.Context, dest string) (string, error)
}

// ProcessManager перезапускает управляемый процесс.
// Неизвестный процесс — tools.ErrProcessNotFound.
type ProcessManager interface {
	Restart(ctx context.Context, name string) (string, error)
}

// Dumper пишет дамп базы в w.
type Dumper interface {
	Dump(ctx context.Context, req tools.DumpRequest, w io.Writer) (string, error)
}

// Uploader загружает файл в объектное хранилище.
type Uploader interface {
	Put(ctx context.Context, localPath, key string, meta map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CredentialResolver разрешает ссылку на секрет.
type CredentialResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Notifier публикует терминальные записи (опционально).
type Notifier interface {
	NotifyDeploy(ctx context.Context, rec *domain.DeploymentRecord) error
	NotifyBackup(ctx context.Context, art *domain.BackupArtifact) error
}
