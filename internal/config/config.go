package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath — путь к файлу конфигурации по умолчанию.
const DefaultPath = "/etc/keeper/keeper.yaml"

// ErrInvalidConfig — конфигурация не прошла валидацию.
var ErrInvalidConfig = errors.New("invalid config")

// Config — полная конфигурация Keeper.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Backup   BackupConfig   `yaml:"backup"`
	Storage  StorageConfig  `yaml:"storage"`
	Deploy   DeployConfig   `yaml:"deploy"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
	Audit    AuditConfig    `yaml:"audit"`
	Guard    GuardConfig    `yaml:"guard"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Events   EventsConfig   `yaml:"events"`
}

// DatabaseConfig — параметры подключения к MySQL.
type DatabaseConfig struct {
	Name string `yaml:"name" env:"KEEPER_DB_NAME"`
	Host string `yaml:"host" env:"KEEPER_DB_HOST"`
	Port int    `yaml:"port" env:"KEEPER_DB_PORT"`
	User string `yaml:"user" env:"KEEPER_DB_USER"`

	// CredentialRef — ссылка на пароль: env:NAME, file:/path, keyring:service/user.
	CredentialRef string `yaml:"credential_ref" env:"KEEPER_DB_CREDENTIAL_REF"`

	// DumpCmd — путь к mysqldump.
	DumpCmd string `yaml:"dump_cmd" env:"KEEPER_DUMP_CMD"`
}

// BackupConfig — локальное хранение и политика повторов.
type BackupConfig struct {
	Dir            string        `yaml:"dir" env:"KEEPER_BACKUP_DIR"`
	RetentionDays  int           `yaml:"retention_days" env:"KEEPER_RETENTION_DAYS"`
	MaxAttempts    int           `yaml:"max_attempts" env:"KEEPER_MAX_ATTEMPTS"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"KEEPER_INITIAL_BACKOFF"`
	MaxBackoff     time.Duration `yaml:"max_backoff" env:"KEEPER_MAX_BACKOFF"`

	// TmpDir — каталог временных option file для mysqldump.
	TmpDir string `yaml:"tmp_dir" env:"KEEPER_BACKUP_TMP_DIR"`
}

// Retention возвращает retention window как duration.
func (b BackupConfig) Retention() time.Duration {
	return time.Duration(b.RetentionDays) * 24 * time.Hour
}

// StorageConfig — объектное хранилище (S3 или совместимое).
type StorageConfig struct {
	Bucket    string `yaml:"bucket" env:"KEEPER_S3_BUCKET"`
	Prefix    string `yaml:"prefix" env:"KEEPER_S3_PREFIX"`
	Region    string `yaml:"region" env:"AWS_REGION"`
	Endpoint  string `yaml:"endpoint" env:"KEEPER_S3_ENDPOINT"`
	PathStyle bool   `yaml:"path_style" env:"KEEPER_S3_PATH_STYLE"`
}

// DeployConfig — параметры развёртывания.
type DeployConfig struct {
	Dir        string `yaml:"dir" env:"KEEPER_DEPLOY_DIR"`
	RepoURL    string `yaml:"repo_url" env:"KEEPER_REPO_URL"`
	Branch     string `yaml:"branch" env:"KEEPER_BRANCH"`
	Process    string `yaml:"process" env:"KEEPER_PROCESS"`
	GitCmd     string `yaml:"git_cmd" env:"KEEPER_GIT_CMD"`
	NPMCmd     string `yaml:"npm_cmd" env:"KEEPER_NPM_CMD"`
	PM2Cmd     string `yaml:"pm2_cmd" env:"KEEPER_PM2_CMD"`
	ExcerptMax int    `yaml:"excerpt_lines" env:"KEEPER_EXCERPT_LINES"`
}

// TimeoutConfig — таймауты фаз. Ни одна фаза не блокируется бесконечно.
type TimeoutConfig struct {
	Fetch   time.Duration `yaml:"fetch" env:"KEEPER_TIMEOUT_FETCH"`
	Install time.Duration `yaml:"install" env:"KEEPER_TIMEOUT_INSTALL"`
	Restart time.Duration `yaml:"restart" env:"KEEPER_TIMEOUT_RESTART"`
	Dump    time.Duration `yaml:"dump" env:"KEEPER_TIMEOUT_DUMP"`
	Upload  time.Duration `yaml:"upload" env:"KEEPER_TIMEOUT_UPLOAD"`
}

// AuditConfig — журнал аудита.
type AuditConfig struct {
	Path string `yaml:"path" env:"KEEPER_AUDIT_PATH"`

	// MirrorDSN — если задан, записи дублируются в PostgreSQL.
	MirrorDSN string `yaml:"mirror_dsn" env:"KEEPER_AUDIT_MIRROR_DSN"`
}

// Guard backends.
const (
	GuardFile     = "file"
	GuardPostgres = "postgres"
	GuardRedis    = "redis"
)

// GuardConfig — mutual-exclusion guard для бэкапов.
type GuardConfig struct {
	Backend   string        `yaml:"backend" env:"KEEPER_GUARD_BACKEND"`
	LockDir   string        `yaml:"lock_dir" env:"KEEPER_LOCK_DIR"`
	DSN       string        `yaml:"dsn" env:"KEEPER_GUARD_DSN"`
	RedisAddr string        `yaml:"redis_addr" env:"KEEPER_GUARD_REDIS_ADDR"`
	RedisTTL  time.Duration `yaml:"redis_ttl" env:"KEEPER_GUARD_REDIS_TTL"`
}

// ScheduleConfig — планировщик.
type ScheduleConfig struct {
	Cron string `yaml:"cron" env:"KEEPER_SCHEDULE"`
	Port int    `yaml:"port" env:"SCHED_PORT"`
}

// EventsConfig — публикация событий в RabbitMQ (опционально).
type EventsConfig struct {
	AMQPURL string `yaml:"amqp_url" env:"KEEPER_AMQP_URL"`
}

// Defaults возвращает конфигурацию по умолчанию.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    3306,
			DumpCmd: "mysqldump",
		},
		Backup: BackupConfig{
			Dir:            "/var/backups/keeper",
			RetentionDays:  7,
			MaxAttempts:    3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
		Storage: StorageConfig{
			Region: "us-east-1",
		},
		Deploy: DeployConfig{
			Branch:     "main",
			GitCmd:     "git",
			NPMCmd:     "npm",
			PM2Cmd:     "pm2",
			ExcerptMax: 40,
		},
		Timeouts: TimeoutConfig{
			Fetch:   5 * time.Minute,
			Install: 15 * time.Minute,
			Restart: time.Minute,
			Dump:    time.Hour,
			Upload:  30 * time.Minute,
		},
		Audit: AuditConfig{
			Path: "/var/log/keeper/audit.jsonl",
		},
		Guard: GuardConfig{
			Backend:  GuardFile,
			LockDir:  "/var/lock/keeper",
			RedisTTL: 2 * time.Hour,
		},
		Schedule: ScheduleConfig{
			Cron: "@hourly",
			Port: 8081,
		},
	}
}

// Load читает конфигурацию.
//
// Если path пустой, используется KEEPER_CONFIG или DefaultPath; отсутствие
// файла по умолчанию не считается ошибкой. Явно указанный, но
// отсутствующий файл — ошибка.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("KEEPER_CONFIG"); v != "" {
			path = v
			explicit = true
		} else {
			path = DefaultPath
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// файл по умолчанию необязателен
	default:
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет общие параметры.
// Параметры конкретных операций проверяют ValidateBackup и ValidateDeploy.
func (c *Config) Validate() error {
	if c.Audit.Path == "" {
		return fmt.Errorf("%w: audit.path is required", ErrInvalidConfig)
	}
	if c.Schedule.Port < 1 || c.Schedule.Port > 65535 {
		return fmt.Errorf("%w: invalid schedule.port: %d", ErrInvalidConfig, c.Schedule.Port)
	}
	switch c.Guard.Backend {
	case GuardFile:
		if c.Guard.LockDir == "" {
			return fmt.Errorf("%w: guard.lock_dir is required for file guard", ErrInvalidConfig)
		}
	case GuardPostgres:
		if c.Guard.DSN == "" {
			return fmt.Errorf("%w: guard.dsn is required for postgres guard", ErrInvalidConfig)
		}
	case GuardRedis:
		if c.Guard.RedisAddr == "" {
			return fmt.Errorf("%w: guard.redis_addr is required for redis guard", ErrInvalidConfig)
		}
		if c.Guard.RedisTTL <= 0 {
			return fmt.Errorf("%w: guard.redis_ttl must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown guard backend %q (must be file, postgres or redis)", ErrInvalidConfig, c.Guard.Backend)
	}
	return nil
}

// ValidateBackup проверяет параметры, необходимые для backup.
func (c *Config) ValidateBackup() error {
	if c.Database.Name == "" {
		return fmt.Errorf("%w: database.name is required", ErrInvalidConfig)
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: database.user is required", ErrInvalidConfig)
	}
	if c.Database.CredentialRef == "" {
		return fmt.Errorf("%w: database.credential_ref is required", ErrInvalidConfig)
	}
	if c.Backup.Dir == "" {
		return fmt.Errorf("%w: backup.dir is required", ErrInvalidConfig)
	}
	if c.Backup.RetentionDays < 1 {
		return fmt.Errorf("%w: backup.retention_days must be at least 1", ErrInvalidConfig)
	}
	if c.Backup.MaxAttempts < 1 {
		return fmt.Errorf("%w: backup.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required", ErrInvalidConfig)
	}
	if c.Timeouts.Dump <= 0 || c.Timeouts.Upload <= 0 {
		return fmt.Errorf("%w: dump and upload timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}

// ValidateDeploy проверяет параметры, необходимые для deploy.
func (c *Config) ValidateDeploy() error {
	if c.Deploy.Dir == "" {
		return fmt.Errorf("%w: deploy.dir is required", ErrInvalidConfig)
	}
	if c.Deploy.RepoURL == "" {
		return fmt.Errorf("%w: deploy.repo_url is required", ErrInvalidConfig)
	}
	if c.Deploy.Branch == "" {
		return fmt.Errorf("%w: deploy.branch is required", ErrInvalidConfig)
	}
	if c.Deploy.Process == "" {
		return fmt.Errorf("%w: deploy.process is required", ErrInvalidConfig)
	}
	if c.Timeouts.Fetch <= 0 || c.Timeouts.Install <= 0 || c.Timeouts.Restart <= 0 {
		return fmt.Errorf("%w: fetch, install and restart timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}
