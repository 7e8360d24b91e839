package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/guard"
	"github.com/shaiso/Keeper/internal/secrets"
	"github.com/shaiso/Keeper/internal/telemetry"
	"github.com/shaiso/Keeper/internal/tools"
)

// BackupConfig — конфигурация BackupRunner.
type BackupConfig struct {
	// Параметры подключения к базе.
	Database      string
	Host          string
	Port          int
	User          string
	CredentialRef string

	// Dir — каталог локальных дампов.
	Dir string

	// Retention — сколько хранить загруженные локальные дампы.
	Retention time.Duration

	// Prefix — префикс ключа в хранилище.
	Prefix string

	// Таймауты: весь дамп и одна попытка загрузки.
	DumpTimeout   time.Duration
	UploadTimeout time.Duration

	Retry RetryPolicy

	// Зависимости
	Guard       guard.Guard // опционально
	Dumper      Dumper
	Uploader    Uploader
	Credentials CredentialResolver
	Audit       audit.Sink
	Notifier    Notifier // опционально
	Redactor    *secrets.Redactor

	Logger *slog.Logger
	Now    func() time.Time
	Sleep  func(ctx context.Context, d time.Duration) error
}

// BackupRunner выполняет один запуск бэкапа:
// guard → dump → upload → resume → prune.
type BackupRunner struct {
	cfg    BackupConfig
	retry  RetryPolicy
	logger *slog.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewBackupRunner создаёт BackupRunner.
func NewBackupRunner(cfg BackupConfig) *BackupRunner {
	if cfg.Redactor == nil {
		cfg.Redactor = secrets.NewRedactor()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &BackupRunner{
		cfg:    cfg,
		retry:  cfg.Retry.withDefaults(),
		logger: telemetry.WithDatabase(logger, cfg.Database),
		now:    now,
		sleep:  sleep,
	}
}

// Run выполняет один запуск бэкапа.
//
// Возвращает артефакт в терминальном состоянии. Ошибка — *PhaseError;
// пропуск из-за занятого guard тоже возвращается как *PhaseError с
// ErrorKindGuardSkip (errors.Is(err, ErrSkipped)).
func (b *BackupRunner) Run(ctx context.Context) (*domain.BackupArtifact, error) {
	art := domain.NewBackupArtifact(b.cfg.Database, b.cfg.Dir, b.now())
	art.RemoteKey = domain.RemoteKey(b.cfg.Prefix, art.FileName())
	logger := telemetry.WithRunID(b.logger, art.ID.String())

	rc := &recorder{
		sink:   b.cfg.Audit,
		kind:   domain.OperationBackup,
		runID:  art.ID,
		now:    b.now,
		logger: logger,
	}

	if err := rc.record(ctx, entry{
		phase:   domain.PhaseStart,
		outcome: domain.OutcomeStarted,
		message: fmt.Sprintf("backup of %s to %s", b.cfg.Database, art.LocalPath),
	}); err != nil {
		return art, fmt.Errorf("write start marker: %w", err)
	}

	logger.Info("backup started", "file", art.LocalPath)
	started := time.Now()

	runErr := b.run(ctx, rc, art, logger)

	var pe *PhaseError
	switch {
	case runErr == nil:
		art.MarkSucceeded()
		logger.Info("backup succeeded", "key", art.RemoteKey, "size", art.Size)
	case errors.As(runErr, &pe) && pe.Kind == domain.ErrorKindGuardSkip:
		art.MarkSkipped(pe.Err.Error())
		logger.Info("backup skipped", "reason", pe.Err)
	case errors.As(runErr, &pe):
		art.MarkFailed(pe.Kind, b.cfg.Redactor.Redact(pe.Err.Error()))
		logger.Error("backup failed", "phase", pe.Phase, "kind", pe.Kind, "error", pe.Err)
	default:
		pe = &PhaseError{Kind: domain.ErrorKindDump, Phase: domain.PhaseDump, Err: runErr}
		runErr = pe
		art.MarkFailed(pe.Kind, b.cfg.Redactor.Redact(pe.Err.Error()))
		logger.Error("backup failed", "error", pe.Err)
	}

	rc.record(ctx, entry{
		phase:     domain.PhaseEnd,
		outcome:   art.Outcome,
		message:   backupSummary(art),
		duration:  time.Since(started),
		errorKind: art.ErrorKind,
		details:   map[string]any{"artifact": art},
	})

	telemetry.ObserveOperation(string(domain.OperationBackup), string(art.Outcome))
	b.notify(ctx, art, logger)

	return art, runErr
}

func (b *BackupRunner) run(ctx context.Context, rc *recorder, art *domain.BackupArtifact, logger *slog.Logger) error {
	if b.cfg.Guard != nil {
		lease, err := b.acquire(ctx, rc)
		if err != nil {
			return err
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release guard", "error", err)
			}
		}()
	}

	password, err := b.cfg.Credentials.Resolve(ctx, b.cfg.CredentialRef)
	if err != nil {
		pe := &PhaseError{Kind: domain.ErrorKindConfig, Phase: domain.PhaseDump, Err: fmt.Errorf("resolve credential: %w", err)}
		rc.record(ctx, phaseFailure(pe, 0, 0))
		return pe
	}
	b.cfg.Redactor.Add(password)

	if err := b.dump(ctx, rc, art, password); err != nil {
		return err
	}

	if err := b.upload(ctx, rc, art, logger); err != nil {
		return err
	}

	b.resume(ctx, rc, art, logger)

	return b.prune(ctx, rc)
}

// acquire захватывает guard по имени базы.
func (b *BackupRunner) acquire(ctx context.Context, rc *recorder) (guard.Lease, error) {
	lease, err := b.cfg.Guard.TryAcquire(ctx, b.cfg.Database)
	if err == nil {
		return lease, nil
	}

	if errors.Is(err, guard.ErrHeld) {
		telemetry.ObserveSchedulerSkip()
		rc.record(ctx, entry{
			phase:     domain.PhaseGuard,
			outcome:   domain.OutcomeSkipped,
			message:   "another backup of " + b.cfg.Database + " is running",
			errorKind: domain.ErrorKindGuardSkip,
		})
		return nil, &PhaseError{Kind: domain.ErrorKindGuardSkip, Phase: domain.PhaseGuard, Err: err}
	}

	pe := phaseError(domain.ErrorKindDump, domain.PhaseGuard, "", fmt.Errorf("acquire guard: %w", err))
	rc.record(ctx, phaseFailure(pe, 0, 0))
	return nil, pe
}

// dump создаёт файл дампа. Существующий файл не перезаписывается.
// При ошибке или пустом выводе частичный файл удаляется.
func (b *BackupRunner) dump(ctx context.Context, rc *recorder, art *domain.BackupArtifact, password string) error {
	start := time.Now()
	fail := func(out string, err error) error {
		pe := phaseError(domain.ErrorKindDump, domain.PhaseDump, b.cfg.Redactor.Redact(out), redactErr(b.cfg.Redactor, err))
		rc.record(ctx, phaseFailure(pe, time.Since(start), defaultExcerptLines))
		return pe
	}

	if err := os.MkdirAll(b.cfg.Dir, 0o750); err != nil {
		return fail("", fmt.Errorf("create backup dir: %w", err))
	}

	f, err := os.OpenFile(art.LocalPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fail("", fmt.Errorf("%w: %s", ErrArtifactExists, art.LocalPath))
	}
	if err != nil {
		return fail("", fmt.Errorf("create dump file: %w", err))
	}

	h := sha256.New()
	cw := &countingWriter{}

	dumpCtx, cancel := withOptionalTimeout(ctx, b.cfg.DumpTimeout)
	out, err := b.cfg.Dumper.Dump(dumpCtx, tools.DumpRequest{
		Database: b.cfg.Database,
		Host:     b.cfg.Host,
		Port:     b.cfg.Port,
		User:     b.cfg.User,
		Password: password,
	}, io.MultiWriter(f, h, cw))
	cancel()

	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err == nil && cw.n == 0 {
		err = ErrEmptyDump
	}
	if err != nil {
		os.Remove(art.LocalPath)
		return fail(out, err)
	}

	art.Size = cw.n
	art.Checksum = hex.EncodeToString(h.Sum(nil))

	rc.record(ctx, entry{
		phase:    domain.PhaseDump,
		outcome:  domain.OutcomeSuccess,
		message:  "dumped " + b.cfg.Database,
		duration: time.Since(start),
		details: map[string]any{
			"file":     art.LocalPath,
			"size":     art.Size,
			"checksum": art.Checksum,
		},
	})
	return nil
}

// upload загружает дамп с повторами и пишет маркер.
// После исчерпания попыток локальный дамп остаётся на месте.
func (b *BackupRunner) upload(ctx context.Context, rc *recorder, art *domain.BackupArtifact, logger *slog.Logger) error {
	start := time.Now()
	state := &domain.RetryState{OperationID: art.ID.String()}

	meta := map[string]string{
		"sha256":   art.Checksum,
		"database": art.Database,
		"size":     strconv.FormatInt(art.Size, 10),
	}

	uploaded := false
	for !uploaded {
		state.Attempt++

		attemptCtx, cancel := withOptionalTimeout(ctx, b.cfg.UploadTimeout)
		err := b.cfg.Uploader.Put(attemptCtx, art.LocalPath, art.RemoteKey, meta)
		cancel()

		telemetry.ObserveUploadAttempt(err == nil)
		if err == nil {
			uploaded = true
			continue
		}

		err = redactErr(b.cfg.Redactor, err)
		if !state.CanRetry(b.retry.MaxAttempts) || ctx.Err() != nil {
			state.RecordFailure(err, 0)
			break
		}

		state.RecordFailure(err, b.retry.Backoff(state.Attempt))
		logger.Warn("upload attempt failed",
			"attempt", state.Attempt,
			"max_attempts", b.retry.MaxAttempts,
			"backoff", state.NextBackoff,
			"error", err,
		)
		if b.sleep(ctx, state.NextBackoff) != nil {
			break
		}
	}

	if !uploaded {
		pe := &PhaseError{
			Kind:  domain.ErrorKindUpload,
			Phase: domain.PhaseUpload,
			Err:   fmt.Errorf("after %d attempts: %w", state.Attempt, state.LastError),
		}
		e := phaseFailure(pe, time.Since(start), 0)
		e.details = map[string]any{"attempts": state.Attempt, "key": art.RemoteKey, "file": art.LocalPath}
		rc.record(ctx, e)
		return pe
	}

	err := writeMarker(art.LocalPath, Marker{
		RemoteKey:  art.RemoteKey,
		Checksum:   art.Checksum,
		Size:       art.Size,
		UploadedAt: b.now().UTC(),
	})
	if err != nil {
		pe := &PhaseError{Kind: domain.ErrorKindUpload, Phase: domain.PhaseUpload, Err: err}
		rc.record(ctx, phaseFailure(pe, time.Since(start), 0))
		return pe
	}

	rc.record(ctx, entry{
		phase:    domain.PhaseUpload,
		outcome:  domain.OutcomeSuccess,
		message:  "uploaded to " + art.RemoteKey,
		duration: time.Since(start),
		details:  map[string]any{"attempts": state.Attempt, "key": art.RemoteKey},
	})
	return nil
}

// resume дозагружает старые дампы без маркера, оставшиеся после
// неудачных запусков. По одной попытке на файл; ошибки не фатальны.
func (b *BackupRunner) resume(ctx context.Context, rc *recorder, art *domain.BackupArtifact, logger *slog.Logger) {
	dumps, err := listDumps(b.cfg.Dir, b.cfg.Database)
	if err != nil {
		logger.Warn("failed to list pending dumps", "error", err)
		return
	}

	start := time.Now()
	var uploaded, failed []string
	for _, d := range dumps {
		if d.Path == art.LocalPath || hasMarker(d.Path) {
			continue
		}
		if err := b.resumeOne(ctx, d); err != nil {
			logger.Warn("failed to upload pending dump", "file", d.Path, "error", redactErr(b.cfg.Redactor, err))
			failed = append(failed, d.Path)
			continue
		}
		uploaded = append(uploaded, d.Path)
	}

	if len(uploaded) == 0 && len(failed) == 0 {
		return
	}

	outcome := domain.OutcomeSuccess
	if len(failed) > 0 {
		outcome = domain.OutcomeFailure
	}
	rc.record(ctx, entry{
		phase:    domain.PhaseResume,
		outcome:  outcome,
		message:  fmt.Sprintf("uploaded %d pending dumps, %d failed", len(uploaded), len(failed)),
		duration: time.Since(start),
		details:  map[string]any{"uploaded": uploaded, "failed": failed},
	})
}

func (b *BackupRunner) resumeOne(ctx context.Context, d localDump) error {
	f, err := os.Open(d.Path)
	if err != nil {
		return err
	}
	h := sha256.New()
	size, err := io.Copy(h, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}
	if size == 0 {
		return ErrEmptyDump
	}

	checksum := hex.EncodeToString(h.Sum(nil))
	key := domain.RemoteKey(b.cfg.Prefix, domain.DumpFileName(b.cfg.Database, d.Timestamp))

	attemptCtx, cancel := withOptionalTimeout(ctx, b.cfg.UploadTimeout)
	defer cancel()

	// Объект мог загрузиться в прошлый раз, а маркер не записаться.
	exists, err := b.cfg.Uploader.Exists(attemptCtx, key)
	if err != nil {
		return fmt.Errorf("check remote: %w", err)
	}
	if !exists {
		err = b.cfg.Uploader.Put(attemptCtx, d.Path, key, map[string]string{
			"sha256":   checksum,
			"database": b.cfg.Database,
			"size":     strconv.FormatInt(size, 10),
		})
		telemetry.ObserveUploadAttempt(err == nil)
		if err != nil {
			return err
		}
	}

	return writeMarker(d.Path, Marker{
		RemoteKey:  key,
		Checksum:   checksum,
		Size:       size,
		UploadedAt: b.now().UTC(),
	})
}

// prune удаляет загруженные дампы старше retention window.
func (b *BackupRunner) prune(ctx context.Context, rc *recorder) error {
	start := time.Now()
	cutoff := b.now().UTC().Add(-b.cfg.Retention)

	res, err := pruneDumps(b.cfg.Dir, b.cfg.Database, cutoff)
	details := map[string]any{
		"cutoff":  cutoff,
		"deleted": res.Deleted,
	}
	if len(res.Kept) > 0 {
		details["kept_not_uploaded"] = res.Kept
	}

	if err != nil {
		pe := &PhaseError{Kind: domain.ErrorKindPrune, Phase: domain.PhasePrune, Err: err}
		e := phaseFailure(pe, time.Since(start), 0)
		e.details = details
		rc.record(ctx, e)
		return pe
	}

	rc.record(ctx, entry{
		phase:    domain.PhasePrune,
		outcome:  domain.OutcomeSuccess,
		message:  fmt.Sprintf("pruned %d dumps", len(res.Deleted)),
		duration: time.Since(start),
		details:  details,
	})
	return nil
}

func (b *BackupRunner) notify(ctx context.Context, art *domain.BackupArtifact, logger *slog.Logger) {
	if b.cfg.Notifier == nil {
		return
	}
	if err := b.cfg.Notifier.NotifyBackup(context.WithoutCancel(ctx), art); err != nil {
		logger.Warn("failed to publish backup event", "error", err)
	}
}

func backupSummary(art *domain.BackupArtifact) string {
	switch art.Outcome {
	case domain.OutcomeSuccess:
		return fmt.Sprintf("backup of %s stored at %s", art.Database, art.RemoteKey)
	case domain.OutcomeSkipped:
		return fmt.Sprintf("backup of %s skipped: %s", art.Database, art.Error)
	default:
		return fmt.Sprintf("backup of %s failed: %s: %s", art.Database, art.ErrorKind, art.Error)
	}
}

// countingWriter считает записанные байты.
type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
