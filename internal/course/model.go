package course

import "time"

// Course is a purchasable product. Price is in points.
type Course struct {
	ID        string
	Author    string
	Title     string
	StartDate time.Time
	Price     int64
	Available bool
	CreatedAt time.Time
}

// Lesson belongs to a course.
type Lesson struct {
	ID       string
	CourseID string
	Title    string
	Link     string
}

// Group is a study cohort inside a course. Membership lives in its own
// relation; a group row carries no member list.
type Group struct {
	ID        string
	CourseID  string
	Title     string
	CreatedAt time.Time
}

// GroupLoad pairs a group with its current member count. The placement
// policy and the reporting math both consume it.
type GroupLoad struct {
	GroupID string
	Title   string
	Members int
}

// Stats aggregates the reporting figures exposed alongside a course.
type Stats struct {
	LessonsCount        int
	StudentsCount       int
	GroupsFilledPercent float64
	DemandPercent       float64
}
