package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout — формат времени в имени файла бэкапа.
// Лексикографический порядок совпадает с хронологическим.
const TimestampLayout = "2006-01-02-15-04-05"

// DumpExt — расширение файла дампа.
const DumpExt = ".sql"

// BackupArtifact — один файл бэкапа.
//
// Удалённая копия авторитетна. Локальная копия удаляется после
// истечения retention window, но только если она уже загружена.
type BackupArtifact struct {
	// ID — идентификатор запуска бэкапа.
	ID uuid.UUID `json:"id"`

	// Database — имя базы данных.
	Database string `json:"database"`

	// Timestamp — момент создания дампа (UTC, точность до секунды).
	Timestamp time.Time `json:"timestamp"`

	// LocalPath — путь к локальной копии.
	LocalPath string `json:"local_path"`

	// RemoteKey — ключ объекта в хранилище.
	RemoteKey string `json:"remote_key,omitempty"`

	// Size — размер дампа в байтах.
	Size int64 `json:"size"`

	// Checksum — sha256 дампа (hex).
	Checksum string `json:"checksum,omitempty"`

	// Outcome — исход запуска.
	Outcome Outcome `json:"outcome"`

	// ErrorKind — категория ошибки, если Outcome == failure или skipped.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// Error — текст ошибки (без секретов).
	Error string `json:"error,omitempty"`
}

// NewBackupArtifact создаёт артефакт для базы db в каталоге dir.
// Время усекается до секунды и переводится в UTC.
func NewBackupArtifact(db, dir string, now time.Time) *BackupArtifact {
	ts := now.UTC().Truncate(time.Second)
	return &BackupArtifact{
		ID:        uuid.New(),
		Database:  db,
		Timestamp: ts,
		LocalPath: filepath.Join(dir, DumpFileName(db, ts)),
		Outcome:   OutcomeStarted,
	}
}

// FileName возвращает имя файла дампа без каталога.
func (a *BackupArtifact) FileName() string {
	return filepath.Base(a.LocalPath)
}

// MarkSucceeded переводит артефакт в success.
func (a *BackupArtifact) MarkSucceeded() error {
	if a.Outcome.IsTerminal() {
		return ErrAlreadyFinal
	}
	a.Outcome = OutcomeSuccess
	return nil
}

// MarkFailed переводит артефакт в failure.
func (a *BackupArtifact) MarkFailed(kind ErrorKind, msg string) error {
	if a.Outcome.IsTerminal() {
		return ErrAlreadyFinal
	}
	a.Outcome = OutcomeFailure
	a.ErrorKind = kind
	a.Error = msg
	return nil
}

// MarkSkipped переводит артефакт в skipped.
func (a *BackupArtifact) MarkSkipped(msg string) error {
	if a.Outcome.IsTerminal() {
		return ErrAlreadyFinal
	}
	a.Outcome = OutcomeSkipped
	a.ErrorKind = ErrorKindGuardSkip
	a.Error = msg
	return nil
}

// DumpFileName формирует имя файла: "<db>_<YYYY-MM-DD-HH-MM-SS>.sql".
func DumpFileName(db string, ts time.Time) string {
	return fmt.Sprintf("%s_%s%s", db, ts.UTC().Format(TimestampLayout), DumpExt)
}

// ParseDumpFileName извлекает время из имени файла дампа базы db.
// Возвращает false, если имя не принадлежит этой базе.
func ParseDumpFileName(db, name string) (time.Time, bool) {
	prefix := db + "_"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, DumpExt) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), DumpExt)
	ts, err := time.ParseInLocation(TimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// RemoteKey формирует ключ объекта: "<prefix>/<file>".
func RemoteKey(prefix, fileName string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return fileName
	}
	return prefix + "/" + fileName
}
