package course

import (
	"context"
	"errors"
)

var (
	// ErrCourseNotFound indicates no course exists for the id.
	ErrCourseNotFound = errors.New("course not found")

	// ErrGroupNotFound indicates no group exists for the id.
	ErrGroupNotFound = errors.New("group not found")
)

// Repository persists courses, lessons, groups and group membership.
type Repository interface {
	CreateCourse(ctx context.Context, c Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	UpdateCourse(ctx context.Context, c Course) error
	DeleteCourse(ctx context.Context, id string) error

	CreateLesson(ctx context.Context, l Lesson) error
	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	CountLessons(ctx context.Context, courseID string) (int, error)

	CreateGroup(ctx context.Context, g Group) error
	ListGroups(ctx context.Context, courseID string) ([]Group, error)

	// GroupLoads returns the course's groups with member counts, ordered by
	// ascending count and then ascending group id so callers get a
	// deterministic least-filled-first view.
	GroupLoads(ctx context.Context, courseID string) ([]GroupLoad, error)
	AddGroupMember(ctx context.Context, groupID, userID string) error
	ListGroupMembers(ctx context.Context, groupID string) ([]string, error)
	MemberTotal(ctx context.Context, courseID string) (int, error)
}
