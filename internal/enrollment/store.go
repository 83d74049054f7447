package enrollment

import (
	"context"
	"errors"

	"github.com/learnpay/learnpay/internal/storage"
)

// ErrAlreadyEnrolled indicates an enrollment for the (user, course) pair
// already exists, including when a concurrent request won the insert.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// Store owns enrollment records and enforces (user, course) uniqueness.
//
// CreateTx is an atomic check-and-insert inside the caller's unit of work:
// under concurrent calls with the same key exactly one succeeds and every
// other returns ErrAlreadyEnrolled.
type Store interface {
	CreateTx(ctx context.Context, tx storage.Tx, userID, courseID string) (Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]Enrollment, error)
	ListByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}
