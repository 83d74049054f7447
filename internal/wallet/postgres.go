package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnpay/learnpay/internal/storage"
)

// PostgresStore persists point accounts in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed account store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureAccount guarantees an account row exists for the user.
func (s *PostgresStore) EnsureAccount(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO accounts (user_id, balance) VALUES ($1, 0)
        ON CONFLICT (user_id) DO NOTHING`, uid)
	return err
}

// Balance returns the current point balance for the user.
func (s *PostgresStore) Balance(ctx context.Context, userID string) (int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, err
	}
	var balance int64
	if err := s.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1`, uid).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Credit adds points to the account and returns the new balance.
func (s *PostgresStore) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, err
	}
	var balance int64
	err = s.db.QueryRow(ctx, `UPDATE accounts SET balance = balance + $1 WHERE user_id = $2
        RETURNING balance`, amount, uid).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// DebitTx deducts points inside the caller's transaction. The account row is
// locked for the remainder of the unit of work, which serializes debits per
// account and keeps the balance check and the deduction indivisible.
func (s *PostgresStore) DebitTx(ctx context.Context, tx storage.Tx, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	ptx, ok := tx.(pgx.Tx)
	if !ok {
		return fmt.Errorf("wallet: unexpected tx type %T", tx)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}

	var balance int64
	if err := ptx.QueryRow(ctx, `SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`, uid).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	_, err = ptx.Exec(ctx, `UPDATE accounts SET balance = balance - $1 WHERE user_id = $2`, amount, uid)
	return err
}
