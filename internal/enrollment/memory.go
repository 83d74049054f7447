package enrollment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/learnpay/learnpay/internal/storage"
)

type memoryStore struct {
	runner *storage.MemoryRunner
	byKey  map[string]Enrollment // userID + ":" + courseID
}

// NewMemoryStore constructs an in-memory enrollment store for development
// and tests, sharing the runner's lock with the wallet store.
func NewMemoryStore(runner *storage.MemoryRunner) Store {
	return &memoryStore{runner: runner, byKey: make(map[string]Enrollment)}
}

func key(userID, courseID string) string {
	return userID + ":" + courseID
}

func (s *memoryStore) CreateTx(_ context.Context, tx storage.Tx, userID, courseID string) (Enrollment, error) {
	mtx, ok := tx.(*storage.MemoryTx)
	if !ok {
		return Enrollment{}, fmt.Errorf("enrollment: unexpected tx type %T", tx)
	}
	k := key(userID, courseID)
	if _, exists := s.byKey[k]; exists {
		return Enrollment{}, ErrAlreadyEnrolled
	}
	enr := Enrollment{
		ID:        uuid.New().String(),
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: time.Now().UTC(),
	}
	s.byKey[k] = enr
	mtx.OnRollback(func() { delete(s.byKey, k) })
	return enr, nil
}

func (s *memoryStore) ListByUser(ctx context.Context, userID string) ([]Enrollment, error) {
	return s.list(ctx, func(e Enrollment) bool { return e.UserID == userID })
}

func (s *memoryStore) ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error) {
	return s.list(ctx, func(e Enrollment) bool { return e.CourseID == courseID })
}

func (s *memoryStore) CountByCourse(ctx context.Context, courseID string) (int, error) {
	list, err := s.ListByCourse(ctx, courseID)
	return len(list), err
}

func (s *memoryStore) list(ctx context.Context, match func(Enrollment) bool) ([]Enrollment, error) {
	var out []Enrollment
	err := s.runner.WithinTx(ctx, func(storage.Tx) error {
		for _, e := range s.byKey {
			if match(e) {
				out = append(out, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
