package storage

import (
	"context"
	"sync"
)

// MemoryRunner serializes units of work behind a single mutex. Stores built
// on the same runner perform every read and write inside WithinTx, so a
// half-applied purchase is never visible to concurrent callers.
type MemoryRunner struct {
	mu sync.Mutex
}

// NewMemoryRunner constructs a runner for in-memory stores.
func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{}
}

// MemoryTx collects undo callbacks for the writes performed during one unit
// of work. On failure they run in reverse order.
type MemoryTx struct {
	undo []func()
}

// OnRollback registers a callback that reverts a write if the unit of work
// fails.
func (t *MemoryTx) OnRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

// WithinTx runs fn under the runner's lock, unwinding registered undo
// callbacks when fn returns an error.
func (r *MemoryRunner) WithinTx(_ context.Context, fn func(tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &MemoryTx{}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}
