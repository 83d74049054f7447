// Package placement distributes newly enrolled students across a course's
// study groups. It is a greedy load balancer: pick the group with the fewest
// members, lowest id on ties. The soft seats-per-group hint is never
// enforced, and placement is a best-effort side effect of a committed
// purchase — it never rolls an enrollment back.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/learnpay/learnpay/internal/course"
)

// ErrNoGroups indicates the course has no study groups, so the student
// stays unplaced. The purchase is unaffected.
var ErrNoGroups = errors.New("course has no groups")

// Store is the slice of the course repository the policy needs: a
// least-filled-first view of a course's groups and a membership write.
type Store interface {
	GroupLoads(ctx context.Context, courseID string) ([]course.GroupLoad, error)
	AddGroupMember(ctx context.Context, groupID, userID string) error
}

// Placement records where a student landed.
type Placement struct {
	GroupID  string
	CourseID string
	UserID   string
}

// Service implements the group assignment policy.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService builds a placement service instance.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Place puts the user into the least-filled group of the course. The count
// is read before the write, so two concurrent placements may pick the same
// group and overshoot the balance by one; sequential placements stay within
// a one-member spread.
func (s *Service) Place(ctx context.Context, courseID, userID string) (Placement, error) {
	loads, err := s.store.GroupLoads(ctx, courseID)
	if err != nil {
		return Placement{}, fmt.Errorf("list groups: %w", err)
	}
	if len(loads) == 0 {
		return Placement{}, ErrNoGroups
	}

	target := loads[0]
	for _, load := range loads[1:] {
		if load.Members < target.Members ||
			(load.Members == target.Members && load.GroupID < target.GroupID) {
			target = load
		}
	}

	if err := s.store.AddGroupMember(ctx, target.GroupID, userID); err != nil {
		return Placement{}, fmt.Errorf("add member: %w", err)
	}

	s.logger.Info("student placed",
		"course_id", courseID,
		"user_id", userID,
		"group_id", target.GroupID,
	)
	return Placement{GroupID: target.GroupID, CourseID: courseID, UserID: userID}, nil
}
