package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRunner executes units of work as PostgreSQL transactions. The Tx
// handle it produces is a pgx.Tx.
type PostgresRunner struct {
	db *pgxpool.Pool
}

// NewPostgresRunner builds a runner on top of a pgx connection pool.
func NewPostgresRunner(db *pgxpool.Pool) *PostgresRunner {
	return &PostgresRunner{db: db}
}

// WithinTx runs fn inside a database transaction.
func (r *PostgresRunner) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
