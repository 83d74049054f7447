package course

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnrollmentCounter reports how many students purchased a course.
type EnrollmentCounter interface {
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// StudentCounter reports the total number of registered students.
type StudentCounter interface {
	Count(ctx context.Context) (int, error)
}

// Service exposes course catalog operations and reporting figures.
type Service struct {
	repo        Repository
	enrollments EnrollmentCounter
	students    StudentCounter

	// capacity is the soft seats-per-group hint. It feeds the filled-percent
	// figure only; placement never enforces it.
	capacity int
}

// NewService builds a course service instance.
func NewService(repo Repository, enrollments EnrollmentCounter, students StudentCounter, capacity int) *Service {
	return &Service{repo: repo, enrollments: enrollments, students: students, capacity: capacity}
}

// CreateCourseInput captures data required to create a course.
type CreateCourseInput struct {
	Author    string
	Title     string
	StartDate time.Time
	Price     int64
	Available bool
}

// CreateCourse registers a new course in the catalog.
func (s *Service) CreateCourse(ctx context.Context, input CreateCourseInput) (Course, error) {
	if input.Title == "" {
		return Course{}, fmt.Errorf("title is required")
	}
	if input.Price < 0 {
		return Course{}, fmt.Errorf("price must not be negative")
	}
	c := Course{
		ID:        uuid.New().String(),
		Author:    input.Author,
		Title:     input.Title,
		StartDate: input.StartDate.UTC(),
		Price:     input.Price,
		Available: input.Available,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateCourse(ctx, c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// Get fetches a course by id.
func (s *Service) Get(ctx context.Context, id string) (Course, error) {
	return s.repo.GetCourse(ctx, id)
}

// List returns all courses.
func (s *Service) List(ctx context.Context) ([]Course, error) {
	return s.repo.ListCourses(ctx)
}

// Update rewrites a course's fields.
func (s *Service) Update(ctx context.Context, c Course) error {
	if c.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return s.repo.UpdateCourse(ctx, c)
}

// Delete removes a course and its lessons, groups and memberships.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteCourse(ctx, id)
}

// AddLesson attaches a lesson to a course.
func (s *Service) AddLesson(ctx context.Context, courseID, title, link string) (Lesson, error) {
	if title == "" {
		return Lesson{}, fmt.Errorf("title is required")
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return Lesson{}, err
	}
	l := Lesson{ID: uuid.New().String(), CourseID: courseID, Title: title, Link: link}
	if err := s.repo.CreateLesson(ctx, l); err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// Lessons lists a course's lessons.
func (s *Service) Lessons(ctx context.Context, courseID string) ([]Lesson, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListLessons(ctx, courseID)
}

// AddGroup attaches a study group to a course.
func (s *Service) AddGroup(ctx context.Context, courseID, title string) (Group, error) {
	if title == "" {
		return Group{}, fmt.Errorf("title is required")
	}
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return Group{}, err
	}
	g := Group{ID: uuid.New().String(), CourseID: courseID, Title: title, CreatedAt: time.Now().UTC()}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return Group{}, err
	}
	return g, nil
}

// Groups lists a course's groups with their member counts.
func (s *Service) Groups(ctx context.Context, courseID string) ([]GroupLoad, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.GroupLoads(ctx, courseID)
}

// GroupMembers lists the students placed into a group.
func (s *Service) GroupMembers(ctx context.Context, groupID string) ([]string, error) {
	return s.repo.ListGroupMembers(ctx, groupID)
}

// Stats computes the reporting figures for one course: lesson and student
// counts, how full the groups are against the soft capacity hint, and what
// share of all registered students bought the course.
func (s *Service) Stats(ctx context.Context, courseID string) (Stats, error) {
	lessons, err := s.repo.CountLessons(ctx, courseID)
	if err != nil {
		return Stats{}, err
	}
	enrolled, err := s.enrollments.CountByCourse(ctx, courseID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{LessonsCount: lessons, StudentsCount: enrolled}

	groups, err := s.repo.ListGroups(ctx, courseID)
	if err != nil {
		return Stats{}, err
	}
	if len(groups) > 0 && s.capacity > 0 {
		placed, err := s.repo.MemberTotal(ctx, courseID)
		if err != nil {
			return Stats{}, err
		}
		stats.GroupsFilledPercent = float64(placed) / float64(len(groups)*s.capacity) * 100
	}

	total, err := s.students.Count(ctx)
	if err != nil {
		return Stats{}, err
	}
	if total > 0 {
		stats.DemandPercent = float64(enrolled) / float64(total) * 100
	}

	return stats, nil
}
