package course

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	courses map[string]Course
	lessons map[string][]Lesson           // courseID -> lessons
	groups  map[string][]Group            // courseID -> groups
	members map[string]map[string]struct{} // groupID -> user ids
}

// NewMemoryRepository constructs an in-memory course repository for
// development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		courses: make(map[string]Course),
		lessons: make(map[string][]Lesson),
		groups:  make(map[string][]Group),
		members: make(map[string]map[string]struct{}),
	}
}

func (r *memoryRepository) CreateCourse(_ context.Context, c Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = c
	return nil
}

func (r *memoryRepository) GetCourse(_ context.Context, id string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return c, nil
}

func (r *memoryRepository) ListCourses(_ context.Context) ([]Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) UpdateCourse(_ context.Context, c Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[c.ID]; !ok {
		return ErrCourseNotFound
	}
	r.courses[c.ID] = c
	return nil
}

func (r *memoryRepository) DeleteCourse(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return ErrCourseNotFound
	}
	delete(r.courses, id)
	delete(r.lessons, id)
	for _, g := range r.groups[id] {
		delete(r.members, g.ID)
	}
	delete(r.groups, id)
	return nil
}

func (r *memoryRepository) CreateLesson(_ context.Context, l Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[l.CourseID]; !ok {
		return ErrCourseNotFound
	}
	r.lessons[l.CourseID] = append(r.lessons[l.CourseID], l)
	return nil
}

func (r *memoryRepository) ListLessons(_ context.Context, courseID string) ([]Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lesson, len(r.lessons[courseID]))
	copy(out, r.lessons[courseID])
	return out, nil
}

func (r *memoryRepository) CountLessons(_ context.Context, courseID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lessons[courseID]), nil
}

func (r *memoryRepository) CreateGroup(_ context.Context, g Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[g.CourseID]; !ok {
		return ErrCourseNotFound
	}
	r.groups[g.CourseID] = append(r.groups[g.CourseID], g)
	r.members[g.ID] = make(map[string]struct{})
	return nil
}

func (r *memoryRepository) ListGroups(_ context.Context, courseID string) ([]Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Group, len(r.groups[courseID]))
	copy(out, r.groups[courseID])
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) GroupLoads(_ context.Context, courseID string) ([]GroupLoad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GroupLoad, 0, len(r.groups[courseID]))
	for _, g := range r.groups[courseID] {
		out = append(out, GroupLoad{GroupID: g.ID, Title: g.Title, Members: len(r.members[g.ID])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Members != out[j].Members {
			return out[i].Members < out[j].Members
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out, nil
}

func (r *memoryRepository) AddGroupMember(_ context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[groupID]
	if !ok {
		return ErrGroupNotFound
	}
	members[userID] = struct{}{}
	return nil
}

func (r *memoryRepository) ListGroupMembers(_ context.Context, groupID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.members[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	out := make([]string, 0, len(members))
	for uid := range members {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memoryRepository) MemberTotal(_ context.Context, courseID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, g := range r.groups[courseID] {
		total += len(r.members[g.ID])
	}
	return total, nil
}
