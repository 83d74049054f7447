package enrollment

import "time"

// Enrollment records that a student purchased access to a course. At most
// one exists per (user, course); it is never updated or deleted.
type Enrollment struct {
	ID        string
	UserID    string
	CourseID  string
	CreatedAt time.Time
}
