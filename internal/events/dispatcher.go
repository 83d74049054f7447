package events

import (
	"context"
	"log/slog"
	"sync"
)

// HandlerFunc consumes one committed-enrollment event.
type HandlerFunc func(ctx context.Context, ev EnrollmentCommitted)

// Dispatcher delivers enrollment events to a single consumer on a worker
// goroutine. Delivery is best effort: when the buffer is full the event is
// dropped with a warning rather than blocking the publisher.
type Dispatcher struct {
	ch      chan EnrollmentCommitted
	handler HandlerFunc
	logger  *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewDispatcher starts the worker goroutine with the given buffer size.
func NewDispatcher(buffer int, handler HandlerFunc, logger *slog.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	d := &Dispatcher{
		ch:      make(chan EnrollmentCommitted, buffer),
		handler: handler,
		logger:  logger,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.ch {
		d.handler(context.Background(), ev)
	}
}

// Publish enqueues the event for the consumer. Callers must only publish
// after the enrollment is durably committed.
func (d *Dispatcher) Publish(ev EnrollmentCommitted) {
	select {
	case d.ch <- ev:
	default:
		d.logger.Warn("enrollment event dropped, buffer full",
			"enrollment_id", ev.EnrollmentID,
			"course_id", ev.CourseID,
		)
	}
}

// Close stops accepting events and waits for the worker to drain the buffer.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.ch) })
	d.wg.Wait()
}
