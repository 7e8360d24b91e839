package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/orchestrator"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitError},
		{"config", fmt.Errorf("%w: missing", config.ErrInvalidConfig), ExitConfig},
		{"fetch", &orchestrator.PhaseError{Kind: domain.ErrorKindFetch, Err: errors.New("x")}, ExitFetch},
		{"install", &orchestrator.PhaseError{Kind: domain.ErrorKindInstall, Err: errors.New("x")}, ExitInstall},
		{"restart", &orchestrator.PhaseError{Kind: domain.ErrorKindProcessControl, Err: errors.New("x")}, ExitProcessControl},
		{"dump", &orchestrator.PhaseError{Kind: domain.ErrorKindDump, Err: errors.New("x")}, ExitDump},
		{"upload", &orchestrator.PhaseError{Kind: domain.ErrorKindUpload, Err: errors.New("x")}, ExitUpload},
		{"prune", &orchestrator.PhaseError{Kind: domain.ErrorKindPrune, Err: errors.New("x")}, ExitPrune},
		{"timeout", &orchestrator.PhaseError{Kind: domain.ErrorKindTimeout, Err: errors.New("x")}, ExitTimeout},
		{"credential", &orchestrator.PhaseError{Kind: domain.ErrorKindConfig, Err: errors.New("x")}, ExitConfig},
		{"skipped", &orchestrator.PhaseError{Kind: domain.ErrorKindGuardSkip, Err: errors.New("x")}, ExitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFailureLine(t *testing.T) {
	err := fmt.Errorf("run: %w", &orchestrator.PhaseError{
		Kind:  domain.ErrorKindFetch,
		Phase: domain.PhaseFetch,
		Err:   errors.New("git exited with code 128"),
	})

	got := FailureLine("deploy", err)
	want := "deploy failed: fetch: git exited with code 128"
	if got != want {
		t.Errorf("FailureLine() = %q, want %q", got, want)
	}

	got = FailureLine("audit tail", errors.New("open audit.jsonl: permission denied"))
	if got != "audit tail failed: error: open audit.jsonl: permission denied" {
		t.Errorf("unexpected line %q", got)
	}
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	cfg := fmt.Sprintf(`
audit:
  path: %s
guard:
  backend: file
  lock_dir: %s
`, filepath.Join(dir, "audit.jsonl"), filepath.Join(dir, "locks"))

	path := filepath.Join(dir, "keeper.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestAuditTail_JSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	log, err := audit.Open(filepath.Join(dir, "audit.jsonl"), nil)
	if err != nil {
		t.Fatal(err)
	}
	runID := uuid.New()
	for i, phase := range []string{domain.PhaseStart, domain.PhaseDump, domain.PhaseEnd} {
		err := log.Append(context.Background(), domain.AuditEntry{
			Timestamp: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
			RunID:     runID,
			Kind:      domain.OperationBackup,
			Phase:     phase,
			Outcome:   domain.OutcomeSuccess,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	log.Close()

	stdout, _, err := execute(t, "--config", cfgPath, "--json", "audit", "tail", "-n", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entries []domain.AuditEntry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, stdout)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Phase != domain.PhaseDump || entries[1].Phase != domain.PhaseEnd {
		t.Errorf("unexpected phases %s, %s", entries[0].Phase, entries[1].Phase)
	}
}

func TestAuditTail_Table(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir)

	log, err := audit.Open(filepath.Join(dir, "audit.jsonl"), nil)
	if err != nil {
		t.Fatal(err)
	}
	log.Append(context.Background(), domain.AuditEntry{
		RunID:   uuid.New(),
		Kind:    domain.OperationDeploy,
		Phase:   domain.PhaseRestart,
		Outcome: domain.OutcomeFailure,
		Message: "process not found",
	})
	log.Close()

	stdout, _, err := execute(t, "--config", cfgPath, "audit", "tail", "--kind", "deploy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "PHASE") || !strings.Contains(stdout, "process not found") {
		t.Errorf("unexpected table:\n%s", stdout)
	}
}

func TestDeploy_MissingConfigIsExit2(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir())

	_, _, err := execute(t, "--config", cfgPath, "deploy")
	if err == nil {
		t.Fatal("expected error")
	}
	if code := ExitCode(err); code != ExitConfig {
		t.Errorf("expected exit %d, got %d (%v)", ExitConfig, code, err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "backup")
	if code := ExitCode(err); code != ExitConfig {
		t.Errorf("expected exit %d for explicit missing config, got %d (%v)", ExitConfig, code, err)
	}
}

func TestCommandName(t *testing.T) {
	root := NewRootCmd("test")
	tail, _, err := root.Find([]string{"audit", "tail"})
	if err != nil {
		t.Fatal(err)
	}
	if got := CommandName(tail); got != "audit tail" {
		t.Errorf("CommandName() = %q, want %q", got, "audit tail")
	}
}
