package enrollment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/learnpay/learnpay/internal/storage"
)

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	courseID := uuid.NewString()

	err := runner.WithinTx(ctx, func(tx storage.Tx) error {
		_, err := store.CreateTx(ctx, tx, userID, courseID)
		return err
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	err = runner.WithinTx(ctx, func(tx storage.Tx) error {
		_, err := store.CreateTx(ctx, tx, userID, courseID)
		return err
	})
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	list, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(list))
	}
}

func TestMemoryStore_CreateUndoneOnRollback(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	courseID := uuid.NewString()

	failure := errors.New("debit failed")
	err := runner.WithinTx(ctx, func(tx storage.Tx) error {
		if _, err := store.CreateTx(ctx, tx, userID, courseID); err != nil {
			t.Fatalf("create: %v", err)
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected propagated failure, got %v", err)
	}

	list, _ := store.ListByUser(ctx, userID)
	if len(list) != 0 {
		t.Fatalf("enrollment survived rolled-back unit of work")
	}
}

func TestMemoryStore_ConcurrentCreateSingleWinner(t *testing.T) {
	runner := storage.NewMemoryRunner()
	store := NewMemoryStore(runner)
	ctx := context.Background()

	userID := uuid.NewString()
	courseID := uuid.NewString()

	const attempts = 8

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.WithinTx(ctx, func(tx storage.Tx) error {
				_, err := store.CreateTx(ctx, tx, userID, courseID)
				return err
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, ErrAlreadyEnrolled) {
				t.Errorf("unexpected create error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("expected exactly one winner, got %d", created)
	}
	count, _ := store.CountByCourse(ctx, courseID)
	if count != 1 {
		t.Fatalf("expected 1 enrollment for course, got %d", count)
	}
}
