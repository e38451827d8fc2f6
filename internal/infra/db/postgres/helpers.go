package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// executor is the common surface of pgx.Tx, *pgxpool.Conn and *pgxpool.Pool.
type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// pick resolves the executor for a repository call: the transaction handle
// when one is present, the pool otherwise. Repositories MUST tolerate nil tx.
func pick(pool *pgxpool.Pool, tx interface{}) executor {
	switch v := tx.(type) {
	case pgx.Tx:
		return v
	case *pgxpool.Conn:
		return v
	default:
		return pool
	}
}

func pickRow(ctx context.Context, pool *pgxpool.Pool, tx interface{}, sql string, args ...interface{}) pgx.Row {
	return pick(pool, tx).QueryRow(ctx, sql, args...)
}

func execSQL(ctx context.Context, pool *pgxpool.Pool, tx interface{}, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pick(pool, tx).Exec(ctx, sql, args...)
}
