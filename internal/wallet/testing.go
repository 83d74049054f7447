package wallet

import (
	"context"

	"github.com/learnpay/learnpay/internal/storage"
)

// SeedBalance is a test helper that sets an account balance directly when
// using the in-memory store.
func SeedBalance(s Store, userID string, amount int64) {
	if mem, ok := s.(*memoryStore); ok {
		_ = mem.runner.WithinTx(context.Background(), func(storage.Tx) error {
			mem.balances[userID] = amount
			return nil
		})
	}
}
