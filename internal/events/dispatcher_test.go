package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/learnpay/learnpay/internal/logging"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string

	d := NewDispatcher(8, func(_ context.Context, ev EnrollmentCommitted) {
		mu.Lock()
		got = append(got, ev.EnrollmentID)
		mu.Unlock()
	}, logging.Discard())

	for _, id := range []string{"e1", "e2", "e3"} {
		d.Publish(EnrollmentCommitted{EnrollmentID: id, CommittedAt: time.Now().UTC()})
	}
	d.Close()

	if len(got) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(got))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if got[i] != want {
			t.Fatalf("delivery %d = %s, want %s", i, got[i], want)
		}
	}
}

func TestDispatcher_DropsWhenBufferFull(t *testing.T) {
	block := make(chan struct{})
	var mu sync.Mutex
	handled := 0

	d := NewDispatcher(1, func(context.Context, EnrollmentCommitted) {
		<-block
		mu.Lock()
		handled++
		mu.Unlock()
	}, logging.Discard())

	// First event occupies the worker, second fills the buffer, the rest
	// must be dropped without blocking this goroutine.
	for i := 0; i < 5; i++ {
		d.Publish(EnrollmentCommitted{EnrollmentID: "e"})
	}
	close(block)
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if handled > 2 {
		t.Fatalf("expected at most 2 handled events, got %d", handled)
	}
	if handled == 0 {
		t.Fatalf("no events handled")
	}
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(1, func(context.Context, EnrollmentCommitted) {}, logging.Discard())
	d.Close()
	d.Close()
}
