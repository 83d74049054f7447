// Package purchase composes the wallet debit, the enrollment insert and the
// post-commit group placement into the single user-facing purchase
// operation.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/learnpay/learnpay/internal/course"
	"github.com/learnpay/learnpay/internal/enrollment"
	"github.com/learnpay/learnpay/internal/events"
	"github.com/learnpay/learnpay/internal/notification"
	"github.com/learnpay/learnpay/internal/storage"
	"github.com/learnpay/learnpay/internal/wallet"
)

const confirmationMessage = "Payment successful. Access granted to the course."

// CourseFinder resolves the course being purchased.
type CourseFinder interface {
	GetCourse(ctx context.Context, id string) (course.Course, error)
}

// Publisher receives the committed-enrollment event that triggers placement.
type Publisher interface {
	Publish(ev events.EnrollmentCommitted)
}

// Receipt is the success payload of a purchase.
type Receipt struct {
	Enrollment enrollment.Enrollment
	Message    string
}

// Service orchestrates purchases. It holds no state of its own; the wallet
// and enrollment stores each own their records and the runner binds one
// debit and one insert into a single unit of work.
type Service struct {
	courses     CourseFinder
	wallets     wallet.Store
	enrollments enrollment.Store
	runner      storage.TxRunner
	publisher   Publisher
	notifier    notification.Notifier
	logger      *slog.Logger
}

// NewService constructs a purchase service.
func NewService(
	courses CourseFinder,
	wallets wallet.Store,
	enrollments enrollment.Store,
	runner storage.TxRunner,
	publisher Publisher,
	notifier notification.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		courses:     courses,
		wallets:     wallets,
		enrollments: enrollments,
		runner:      runner,
		publisher:   publisher,
		notifier:    notifier,
		logger:      logger,
	}
}

// Purchase buys course access for the user. Exactly one of four outcomes is
// observable: a committed enrollment with the price debited once, or a
// rejection (course not found, insufficient funds, already enrolled) with
// zero mutation. A rejected purchase never leaves a partial debit behind.
func (s *Service) Purchase(ctx context.Context, userID, courseID string) (Receipt, error) {
	crs, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return Receipt{}, err
		}
		return Receipt{}, fmt.Errorf("resolve course: %w", err)
	}

	var enr enrollment.Enrollment
	err = s.runner.WithinTx(ctx, func(tx storage.Tx) error {
		if crs.Price > 0 {
			if err := s.wallets.DebitTx(ctx, tx, userID, crs.Price); err != nil {
				return err
			}
		}
		created, err := s.enrollments.CreateTx(ctx, tx, userID, crs.ID)
		if err != nil {
			return err
		}
		enr = created
		return nil
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientFunds) || errors.Is(err, enrollment.ErrAlreadyEnrolled) {
			return Receipt{}, err
		}
		return Receipt{}, fmt.Errorf("purchase transaction: %w", err)
	}

	// The enrollment is durable from here on; placement and the confirmation
	// are best effort and never affect the outcome.
	if s.publisher != nil {
		s.publisher.Publish(events.EnrollmentCommitted{
			EnrollmentID: enr.ID,
			UserID:       enr.UserID,
			CourseID:     enr.CourseID,
			CommittedAt:  time.Now().UTC(),
		})
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindPurchaseConfirmed,
			Destination: userID,
			Body:        fmt.Sprintf("You now have access to %q", crs.Title),
		})
	}

	s.logger.Info("purchase committed",
		"user_id", userID,
		"course_id", crs.ID,
		"enrollment_id", enr.ID,
		"price", crs.Price,
	)

	return Receipt{Enrollment: enr, Message: confirmationMessage}, nil
}
