package wallet

import (
	"context"
	"errors"

	"github.com/learnpay/learnpay/internal/storage"
)

var (
	// ErrInsufficientFunds occurs when an account lacks the points to cover
	// a requested debit. The account is left untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound indicates no account exists for the user.
	ErrAccountNotFound = errors.New("account not found")
)

// Store owns point accounts. It is the only writer of balances.
//
// DebitTx participates in a caller-provided unit of work so a purchase can
// compose the debit with the enrollment insert atomically. Debits on the
// same account serialize: under concurrent calls the final balance equals
// the starting balance minus the sum of the debits that succeeded, and a
// balance never goes negative.
type Store interface {
	EnsureAccount(ctx context.Context, userID string) error
	Balance(ctx context.Context, userID string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
	DebitTx(ctx context.Context, tx storage.Tx, userID string, amount int64) error
}
