package domain

import (
	"errors"
	"sort"
	"testing"
	"time"
)

func TestOutcome_IsTerminal(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		terminal bool
	}{
		{OutcomeStarted, false},
		{OutcomeSuccess, true},
		{OutcomeFailure, true},
		{OutcomeSkipped, true},
	}

	for _, tt := range tests {
		if got := tt.outcome.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.outcome, got, tt.terminal)
		}
	}
}

func TestErrorKind_IsFailure(t *testing.T) {
	if ErrorKindGuardSkip.IsFailure() {
		t.Error("guard skip must not be a failure")
	}
	if ErrorKindNone.IsFailure() {
		t.Error("none must not be a failure")
	}
	if !ErrorKindUpload.IsFailure() {
		t.Error("upload must be a failure")
	}
}

func TestDeploymentRecord_SingleTerminalOutcome(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	rec := NewDeploymentRecord("api", "main", now)

	if rec.Outcome != OutcomeStarted {
		t.Fatalf("expected started, got %s", rec.Outcome)
	}
	if rec.Duration() != 0 {
		t.Error("unfinished record should have zero duration")
	}

	if err := rec.MarkSucceeded(now.Add(5 * time.Second)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Duration() != 5*time.Second {
		t.Errorf("expected 5s, got %v", rec.Duration())
	}

	err := rec.MarkFailed(now, ErrorKindFetch, "boom")
	if !errors.Is(err, ErrAlreadyFinal) {
		t.Errorf("expected ErrAlreadyFinal, got %v", err)
	}
	if rec.Outcome != OutcomeSuccess {
		t.Errorf("outcome must stay success, got %s", rec.Outcome)
	}
}

func TestBackupArtifact_FileName(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 999, time.UTC)
	a := NewBackupArtifact("myappdb", "/var/backups", now)

	if a.FileName() != "myappdb_2026-01-02-03-04-05.sql" {
		t.Errorf("unexpected file name %q", a.FileName())
	}
	if a.LocalPath != "/var/backups/myappdb_2026-01-02-03-04-05.sql" {
		t.Errorf("unexpected path %q", a.LocalPath)
	}
	if !a.Timestamp.Equal(now.Truncate(time.Second)) {
		t.Errorf("timestamp should be truncated, got %v", a.Timestamp)
	}
}

func TestBackupArtifact_MarkSkipped(t *testing.T) {
	a := NewBackupArtifact("db", "/tmp", time.Now())
	if err := a.MarkSkipped("busy"); err != nil {
		t.Fatal(err)
	}
	if a.ErrorKind != ErrorKindGuardSkip {
		t.Errorf("expected guard_skip, got %s", a.ErrorKind)
	}
	if err := a.MarkSucceeded(); !errors.Is(err, ErrAlreadyFinal) {
		t.Errorf("expected ErrAlreadyFinal, got %v", err)
	}
}

func TestDumpFileName_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 9, 30, 23, 59, 59, 0, time.UTC)
	times := []time.Time{
		base.Add(48 * time.Hour),
		base,
		base.Add(time.Second),
		base.Add(-365 * 24 * time.Hour),
	}

	var names []string
	for _, ts := range times {
		names = append(names, DumpFileName("db", ts))
	}
	sort.Strings(names)

	prev := time.Time{}
	for _, n := range names {
		ts, ok := ParseDumpFileName("db", n)
		if !ok {
			t.Fatalf("failed to parse %q", n)
		}
		if ts.Before(prev) {
			t.Errorf("lexicographic order broken at %q", n)
		}
		prev = ts
	}
}

func TestParseDumpFileName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"myappdb_2026-10-16-12-00-00.sql", true},
		{"myappdb_2026-10-16-12-00-00.sql.uploaded", false},
		{"other_2026-10-16-12-00-00.sql", false},
		{"myappdb_garbage.sql", false},
		{"myappdb_2026-10-16-12-00-00.gz", false},
	}

	for _, tt := range tests {
		_, ok := ParseDumpFileName("myappdb", tt.name)
		if ok != tt.ok {
			t.Errorf("ParseDumpFileName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestRemoteKey(t *testing.T) {
	tests := []struct {
		prefix, file, want string
	}{
		{"", "a.sql", "a.sql"},
		{"backups", "a.sql", "backups/a.sql"},
		{"/backups/mysql/", "a.sql", "backups/mysql/a.sql"},
	}
	for _, tt := range tests {
		if got := RemoteKey(tt.prefix, tt.file); got != tt.want {
			t.Errorf("RemoteKey(%q, %q) = %q, want %q", tt.prefix, tt.file, got, tt.want)
		}
	}
}

func TestRetryState(t *testing.T) {
	s := &RetryState{OperationID: "op"}
	s.Attempt = 2
	if !s.CanRetry(3) {
		t.Error("attempt 2 of 3 should allow retry")
	}
	s.Attempt = 3
	if s.CanRetry(3) {
		t.Error("attempt 3 of 3 should not allow retry")
	}
	s.RecordFailure(errors.New("x"), time.Second)
	if s.NextBackoff != time.Second || s.LastError == nil {
		t.Error("failure not recorded")
	}
}
