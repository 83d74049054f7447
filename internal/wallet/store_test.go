package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/learnpay/learnpay/internal/storage"
)

func TestMemoryStore_DebitWithinTx(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	if err := store.EnsureAccount(ctx, userID); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	SeedBalance(store, userID, 1_000)

	err := runner.WithinTx(ctx, func(tx storage.Tx) error {
		return store.DebitTx(ctx, tx, userID, 100)
	})
	if err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	balance, err := store.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 900 {
		t.Fatalf("expected balance 900, got %d", balance)
	}
}

func TestMemoryStore_DebitInsufficientFunds(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	store.EnsureAccount(ctx, userID)
	SeedBalance(store, userID, 50)

	err := runner.WithinTx(ctx, func(tx storage.Tx) error {
		return store.DebitTx(ctx, tx, userID, 100)
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, _ := store.Balance(ctx, userID)
	if balance != 50 {
		t.Fatalf("balance mutated on failed debit: %d", balance)
	}
}

func TestMemoryStore_DebitRollsBackOnTxFailure(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	store.EnsureAccount(ctx, userID)
	SeedBalance(store, userID, 500)

	failure := errors.New("later step failed")
	err := runner.WithinTx(ctx, func(tx storage.Tx) error {
		if err := store.DebitTx(ctx, tx, userID, 200); err != nil {
			t.Fatalf("debit: %v", err)
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected propagated failure, got %v", err)
	}

	balance, _ := store.Balance(ctx, userID)
	if balance != 500 {
		t.Fatalf("expected debit undone, balance %d", balance)
	}
}

func TestMemoryStore_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	store.EnsureAccount(ctx, userID)
	SeedBalance(store, userID, 250)

	const workers = 10
	const amount = int64(100)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.WithinTx(ctx, func(tx storage.Tx) error {
				return store.DebitTx(ctx, tx, userID, amount)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Fatalf("expected exactly 2 successful debits, got %d", succeeded)
	}
	balance, _ := store.Balance(ctx, userID)
	if balance != 50 {
		t.Fatalf("expected final balance 50, got %d", balance)
	}
	if balance < 0 {
		t.Fatalf("balance went negative: %d", balance)
	}
}
