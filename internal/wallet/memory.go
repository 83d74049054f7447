package wallet

import (
	"context"
	"fmt"

	"github.com/learnpay/learnpay/internal/storage"
)

type memoryStore struct {
	runner   *storage.MemoryRunner
	balances map[string]int64
}

// NewMemoryStore constructs an in-memory account store for development and
// tests. All access runs through the shared runner so reads never observe a
// purchase mid-flight.
func NewMemoryStore(runner *storage.MemoryRunner) Store {
	return &memoryStore{runner: runner, balances: make(map[string]int64)}
}

func (s *memoryStore) EnsureAccount(ctx context.Context, userID string) error {
	return s.runner.WithinTx(ctx, func(storage.Tx) error {
		if _, exists := s.balances[userID]; !exists {
			s.balances[userID] = 0
		}
		return nil
	})
}

func (s *memoryStore) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := s.runner.WithinTx(ctx, func(storage.Tx) error {
		b, exists := s.balances[userID]
		if !exists {
			return ErrAccountNotFound
		}
		balance = b
		return nil
	})
	return balance, err
}

func (s *memoryStore) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}
	var balance int64
	err := s.runner.WithinTx(ctx, func(storage.Tx) error {
		if _, exists := s.balances[userID]; !exists {
			return ErrAccountNotFound
		}
		s.balances[userID] += amount
		balance = s.balances[userID]
		return nil
	})
	return balance, err
}

func (s *memoryStore) DebitTx(_ context.Context, tx storage.Tx, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	mtx, ok := tx.(*storage.MemoryTx)
	if !ok {
		return fmt.Errorf("wallet: unexpected tx type %T", tx)
	}
	balance, exists := s.balances[userID]
	if !exists {
		return ErrAccountNotFound
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	s.balances[userID] = balance - amount
	mtx.OnRollback(func() { s.balances[userID] += amount })
	return nil
}
