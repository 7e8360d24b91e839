package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/guard"
	"github.com/shaiso/Keeper/internal/mq"
	"github.com/shaiso/Keeper/internal/orchestrator"
	"github.com/shaiso/Keeper/internal/repo"
	"github.com/shaiso/Keeper/internal/secrets"
	"github.com/shaiso/Keeper/internal/storage"
	"github.com/shaiso/Keeper/internal/tools"
)

// App — собранные зависимости одного процесса.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Redactor *secrets.Redactor

	log      *audit.Log
	sink     audit.Sink
	notifier orchestrator.Notifier
	runner   tools.Runner

	closers []func() error
}

// Open открывает журнал аудита и опциональные интеграции.
//
// Недоступные зеркало аудита и брокер событий не мешают работе:
// они только логируются.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	redactor := secrets.NewRedactor()

	log, err := audit.Open(cfg.Audit.Path, redactor)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Redactor: redactor,
		log:      log,
		sink:     log,
		runner:   tools.NewExecRunner(),
	}
	a.closers = append(a.closers, log.Close)

	if dsn := cfg.Audit.MirrorDSN; dsn != "" {
		pool, err := repo.NewPool(ctx, dsn)
		if err != nil {
			logger.Warn("audit mirror unavailable", "error", redactor.Redact(err.Error()))
		} else {
			a.addPool(pool)
			a.sink = audit.NewTee(log, repo.NewAuditRepo(pool), redactor, logger)
		}
	}

	if url := cfg.Events.AMQPURL; url != "" {
		conn, err := mq.NewConnection(url, logger)
		if err != nil {
			logger.Warn("event broker unavailable", "error", err)
		} else {
			a.closers = append(a.closers, conn.Close)
			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to declare event exchange", "error", err)
			}
			a.notifier = mq.NewEvents(mq.NewPublisher(conn, logger))
		}
	}

	return a, nil
}

// Audit возвращает приёмник записей аудита (журнал и, если настроено, зеркало).
func (a *App) Audit() audit.Sink {
	return a.sink
}

// Deployer собирает оркестратор deploy.
func (a *App) Deployer() (*orchestrator.Deployer, error) {
	cfg := a.Config
	if err := cfg.ValidateDeploy(); err != nil {
		return nil, err
	}

	return orchestrator.NewDeployer(orchestrator.DeployConfig{
		Dir:            cfg.Deploy.Dir,
		RepoURL:        cfg.Deploy.RepoURL,
		Branch:         cfg.Deploy.Branch,
		Process:        cfg.Deploy.Process,
		FetchTimeout:   cfg.Timeouts.Fetch,
		InstallTimeout: cfg.Timeouts.Install,
		RestartTimeout: cfg.Timeouts.Restart,
		ExcerptLines:   cfg.Deploy.ExcerptMax,
		VCS:            tools.NewGit(a.runner, cfg.Deploy.GitCmd),
		Installer:      tools.NewNPM(a.runner, cfg.Deploy.NPMCmd),
		Processes:      tools.NewPM2(a.runner, cfg.Deploy.PM2Cmd),
		Audit:          a.sink,
		Notifier:       a.notifier,
		Redactor:       a.Redactor,
		Logger:         a.Logger,
	}), nil
}

// BackupRunner собирает оркестратор backup.
func (a *App) BackupRunner(ctx context.Context) (*orchestrator.BackupRunner, error) {
	cfg := a.Config
	if err := cfg.ValidateBackup(); err != nil {
		return nil, err
	}

	if _, err := secrets.ParseRef(cfg.Database.CredentialRef); err != nil {
		return nil, fmt.Errorf("%w: database.credential_ref: %v", config.ErrInvalidConfig, err)
	}

	g, err := a.guard(ctx)
	if err != nil {
		return nil, err
	}

	uploader, err := storage.NewS3Uploader(ctx, storage.Options{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		PathStyle: cfg.Storage.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: storage: %v", config.ErrInvalidConfig, err)
	}

	dumper := tools.NewMySQLDump(a.runner, cfg.Database.DumpCmd)
	dumper.TempDir = cfg.Backup.TmpDir

	return orchestrator.NewBackupRunner(orchestrator.BackupConfig{
		Database:      cfg.Database.Name,
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		CredentialRef: cfg.Database.CredentialRef,
		Dir:           cfg.Backup.Dir,
		Retention:     cfg.Backup.Retention(),
		Prefix:        cfg.Storage.Prefix,
		DumpTimeout:   cfg.Timeouts.Dump,
		UploadTimeout: cfg.Timeouts.Upload,
		Retry: orchestrator.RetryPolicy{
			MaxAttempts:  cfg.Backup.MaxAttempts,
			InitialDelay: cfg.Backup.InitialBackoff,
			MaxDelay:     cfg.Backup.MaxBackoff,
		},
		Guard:       g,
		Dumper:      dumper,
		Uploader:    uploader,
		Credentials: secrets.NewResolver(),
		Audit:       a.sink,
		Notifier:    a.notifier,
		Redactor:    a.Redactor,
		Logger:      a.Logger,
	}), nil
}

// guard создаёт guard выбранного backend.
func (a *App) guard(ctx context.Context) (guard.Guard, error) {
	cfg := a.Config.Guard

	switch cfg.Backend {
	case config.GuardPostgres:
		pool, err := repo.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("guard: %w", err)
		}
		a.addPool(pool)
		return guard.NewPostgresGuard(pool, "keeper.backup"), nil

	case config.GuardRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("guard: ping redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return guard.NewRedisGuard(client, cfg.RedisTTL), nil

	default:
		return guard.NewFileGuard(cfg.LockDir)
	}
}

func (a *App) addPool(pool *pgxpool.Pool) {
	a.closers = append(a.closers, func() error {
		pool.Close()
		return nil
	})
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
