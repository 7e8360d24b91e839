package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Defaults()
	cfg.Audit.Path = filepath.Join(dir, "audit.jsonl")
	cfg.Guard.LockDir = filepath.Join(dir, "locks")
	return cfg
}

func TestOpen_FileAuditOnly(t *testing.T) {
	cfg := testConfig(t)

	a, err := Open(context.Background(), cfg, telemetry.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Close()

	if _, ok := a.Audit().(*audit.Log); !ok {
		t.Errorf("expected plain file log without mirror, got %T", a.Audit())
	}
}

func TestDeployer_InvalidConfig(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), telemetry.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if _, err := a.Deployer(); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDeployer_Valid(t *testing.T) {
	cfg := testConfig(t)
	cfg.Deploy.Dir = filepath.Join(t.TempDir(), "app")
	cfg.Deploy.RepoURL = "https://example.com/acme/app.git"
	cfg.Deploy.Process = "app"

	a, err := Open(context.Background(), cfg, telemetry.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if _, err := a.Deployer(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBackupRunner_RawPasswordRejected(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Name = "myappdb"
	cfg.Database.User = "backup"
	cfg.Database.CredentialRef = "hunter2"
	cfg.Storage.Bucket = "backups"

	a, err := Open(context.Background(), cfg, telemetry.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	if _, err := a.BackupRunner(context.Background()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, err := Open(context.Background(), testConfig(t), telemetry.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
