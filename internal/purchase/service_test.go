package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/learnpay/learnpay/internal/course"
	"github.com/learnpay/learnpay/internal/enrollment"
	"github.com/learnpay/learnpay/internal/events"
	"github.com/learnpay/learnpay/internal/logging"
	"github.com/learnpay/learnpay/internal/storage"
	"github.com/learnpay/learnpay/internal/wallet"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.EnrollmentCommitted
}

func (p *capturePublisher) Publish(ev events.EnrollmentCommitted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) all() []events.EnrollmentCommitted {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EnrollmentCommitted, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	svc         *Service
	wallets     wallet.Store
	enrollments enrollment.Store
	courses     course.Repository
	publisher   *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	runner := storage.NewMemoryRunner()
	wallets := wallet.NewMemoryStore(runner)
	enrollments := enrollment.NewMemoryStore(runner)
	courses := course.NewMemoryRepository()
	publisher := &capturePublisher{}
	svc := NewService(courses, wallets, enrollments, runner, publisher, nil, logging.Discard())
	return &fixture{
		svc:         svc,
		wallets:     wallets,
		enrollments: enrollments,
		courses:     courses,
		publisher:   publisher,
	}
}

func (f *fixture) seedCourse(t *testing.T, price int64) string {
	t.Helper()
	id := uuid.NewString()
	err := f.courses.CreateCourse(context.Background(), course.Course{
		ID:        id,
		Title:     "Distributed systems",
		StartDate: time.Now().Add(24 * time.Hour),
		Price:     price,
		Available: true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return id
}

func (f *fixture) seedStudent(t *testing.T, balance int64) string {
	t.Helper()
	id := uuid.NewString()
	if err := f.wallets.EnsureAccount(context.Background(), id); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	wallet.SeedBalance(f.wallets, id, balance)
	return id
}

func TestPurchase_DebitsOnceAndEnrolls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID := f.seedCourse(t, 100)
	userID := f.seedStudent(t, 1_000)

	receipt, err := f.svc.Purchase(ctx, userID, courseID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.Message != "Payment successful. Access granted to the course." {
		t.Fatalf("unexpected confirmation: %q", receipt.Message)
	}
	if receipt.Enrollment.UserID != userID || receipt.Enrollment.CourseID != courseID {
		t.Fatalf("receipt enrollment mismatch: %+v", receipt.Enrollment)
	}

	balance, err := f.wallets.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 900 {
		t.Fatalf("expected balance 900, got %d", balance)
	}

	list, _ := f.enrollments.ListByUser(ctx, userID)
	if len(list) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(list))
	}

	published := f.publisher.all()
	if len(published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(published))
	}
	if published[0].EnrollmentID != receipt.Enrollment.ID {
		t.Fatalf("event references enrollment %s, want %s", published[0].EnrollmentID, receipt.Enrollment.ID)
	}
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID := f.seedCourse(t, 100)
	userID := f.seedStudent(t, 50)

	_, err := f.svc.Purchase(ctx, userID, courseID)
	if !errors.Is(err, wallet.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balance, _ := f.wallets.Balance(ctx, userID)
	if balance != 50 {
		t.Fatalf("balance changed on rejected purchase: %d", balance)
	}
	list, _ := f.enrollments.ListByUser(ctx, userID)
	if len(list) != 0 {
		t.Fatalf("enrollment created on rejected purchase")
	}
	if len(f.publisher.all()) != 0 {
		t.Fatalf("event published on rejected purchase")
	}
}

func TestPurchase_RepeatedPurchaseDebitsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID := f.seedCourse(t, 100)
	userID := f.seedStudent(t, 1_000)

	if _, err := f.svc.Purchase(ctx, userID, courseID); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	_, err := f.svc.Purchase(ctx, userID, courseID)
	if !errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		t.Fatalf("expected already enrolled, got %v", err)
	}

	// The second debit must have been undone with the failed insert.
	balance, _ := f.wallets.Balance(ctx, userID)
	if balance != 900 {
		t.Fatalf("expected single debit, balance %d", balance)
	}
	list, _ := f.enrollments.ListByUser(ctx, userID)
	if len(list) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(list))
	}
	if len(f.publisher.all()) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.publisher.all()))
	}
}

func TestPurchase_UnknownCourse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userID := f.seedStudent(t, 1_000)

	_, err := f.svc.Purchase(ctx, userID, uuid.NewString())
	if !errors.Is(err, course.ErrCourseNotFound) {
		t.Fatalf("expected course not found, got %v", err)
	}
	balance, _ := f.wallets.Balance(ctx, userID)
	if balance != 1_000 {
		t.Fatalf("balance changed for unknown course: %d", balance)
	}
}

func TestPurchase_FreeCourseSkipsDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID := f.seedCourse(t, 0)
	userID := f.seedStudent(t, 10)

	if _, err := f.svc.Purchase(ctx, userID, courseID); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	balance, _ := f.wallets.Balance(ctx, userID)
	if balance != 10 {
		t.Fatalf("free course debited the wallet: %d", balance)
	}
}

func TestPurchase_ConcurrentSameCourseSingleEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	courseID := f.seedCourse(t, 100)
	userID := f.seedStudent(t, 10_000)

	const attempts = 10

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Purchase(ctx, userID, courseID)
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case errors.Is(err, enrollment.ErrAlreadyEnrolled):
			default:
				t.Errorf("unexpected purchase error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one successful purchase, got %d", succeeded)
	}
	balance, _ := f.wallets.Balance(ctx, userID)
	if balance != 9_900 {
		t.Fatalf("expected one debit, balance %d", balance)
	}
	if len(f.publisher.all()) != 1 {
		t.Fatalf("expected one event, got %d", len(f.publisher.all()))
	}
}

// End-to-end through the real dispatcher: a committed purchase for a course
// without groups completes, and one with groups ends in a placement.
func TestPurchase_PlacementAfterCommit(t *testing.T) {
	runner := storage.NewMemoryRunner()
	wallets := wallet.NewMemoryStore(runner)
	enrollments := enrollment.NewMemoryStore(runner)
	courses := course.NewMemoryRepository()
	ctx := context.Background()

	courseID := uuid.NewString()
	if err := courses.CreateCourse(ctx, course.Course{ID: courseID, Title: "SQL", Price: 100, Available: true, CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := courses.CreateGroup(ctx, course.Group{ID: "group-a", CourseID: courseID, Title: "A"}); err != nil {
		t.Fatalf("create group: %v", err)
	}

	dispatcher := events.NewDispatcher(8, func(ctx context.Context, ev events.EnrollmentCommitted) {
		if err := courses.AddGroupMember(ctx, "group-a", ev.UserID); err != nil {
			t.Errorf("add member: %v", err)
		}
	}, logging.Discard())

	svc := NewService(courses, wallets, enrollments, runner, dispatcher, nil, logging.Discard())

	userID := uuid.NewString()
	wallets.EnsureAccount(ctx, userID)
	wallet.SeedBalance(wallets, userID, 500)

	if _, err := svc.Purchase(ctx, userID, courseID); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	dispatcher.Close() // drain before asserting

	members, err := courses.ListGroupMembers(ctx, "group-a")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0] != userID {
		t.Fatalf("expected %s placed in group-a, got %v", userID, members)
	}
}
