package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Keeper/internal/domain"
)

// AuditRepo — зеркало журнала аудита. Реализует audit.Sink.
type AuditRepo struct {
	pool *pgxpool.Pool
	host string
}

// NewAuditRepo создаёт новый AuditRepo.
func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	host, _ := os.Hostname()
	return &AuditRepo{pool: pool, host: host}
}

// Append добавляет запись.
func (r *AuditRepo) Append(ctx context.Context, e domain.AuditEntry) error {
	details, err := marshalDetails(e.Details)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_entries (ts, run_id, kind, phase, outcome, message, duration_ms, error_kind, details, host)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		e.Timestamp,
		e.RunID,
		string(e.Kind),
		e.Phase,
		string(e.Outcome),
		e.Message,
		e.DurationMs,
		string(e.ErrorKind),
		details,
		r.host,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// AuditFilter — фильтр выборки записей.
type AuditFilter struct {
	// Kind — тип операции; пусто — все.
	Kind domain.OperationKind

	// Limit — максимум записей (обязателен).
	Limit int
}

// Recent возвращает последние записи в хронологическом порядке.
func (r *AuditRepo) Recent(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	if filter.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidFilter)
	}

	query := `
		SELECT ts, run_id, kind, phase, outcome, message, duration_ms, error_kind, details
		FROM (
			SELECT * FROM audit_entries
			WHERE ($1 = '' OR kind = $1)
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, string(filter.Kind), filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanAuditEntry)
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}
	return entries, nil
}

func scanAuditEntry(row pgx.CollectableRow) (domain.AuditEntry, error) {
	var (
		e                        domain.AuditEntry
		kind, outcome, errorKind string
		details                  []byte
	)
	err := row.Scan(
		&e.Timestamp,
		&e.RunID,
		&kind,
		&e.Phase,
		&outcome,
		&e.Message,
		&e.DurationMs,
		&errorKind,
		&details,
	)
	if err != nil {
		return e, err
	}

	e.Kind = domain.OperationKind(kind)
	e.Outcome = domain.Outcome(outcome)
	e.ErrorKind = domain.ErrorKind(errorKind)

	if len(details) > 0 {
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return e, fmt.Errorf("unmarshal details: %w", err)
		}
	}
	return e, nil
}

// marshalDetails кодирует детали в JSONB; пустые детали — NULL.
func marshalDetails(details map[string]any) ([]byte, error) {
	if len(details) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("marshal details: %w", err)
	}
	return data, nil
}
