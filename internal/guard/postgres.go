package guard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGuard — guard на advisory lock PostgreSQL.
//
// Advisory lock принадлежит сессии, поэтому соединение забирается из
// пула на всё время владения и возвращается только после unlock.
type PostgresGuard struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresGuard создаёт guard. namespace отделяет ключи Keeper
// от других пользователей advisory locks.
func NewPostgresGuard(pool *pgxpool.Pool, namespace string) *PostgresGuard {
	if namespace == "" {
		namespace = "keeper"
	}
	return &PostgresGuard{pool: pool, namespace: namespace}
}

// TryAcquire реализует Guard.
func (g *PostgresGuard) TryAcquire(ctx context.Context, key string) (Lease, error) {
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	lockKey := g.namespace + ":" + key

	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock(hashtextextended($1, 0))", lockKey).Scan(&ok); err != nil {
		conn.Release()
		return nil, fmt.Errorf("try advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return nil, fmt.Errorf("%w: %s", ErrHeld, key)
	}

	return &pgLease{conn: conn, key: lockKey}, nil
}

type pgLease struct {
	conn *pgxpool.Conn
	key  string
}

func (l *pgLease) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Release()
		l.conn = nil
	}()

	var ok bool
	if err := l.conn.QueryRow(ctx, "select pg_advisory_unlock(hashtextextended($1, 0))", l.key).Scan(&ok); err != nil {
		// соединение с неизвестным состоянием блокировки в пул не возвращаем
		l.conn.Conn().Close(ctx)
		return fmt.Errorf("advisory unlock: %w", err)
	}
	if !ok {
		return fmt.Errorf("advisory lock %s was not held", l.key)
	}
	return nil
}
