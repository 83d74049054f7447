// Package events carries the post-commit signals the purchase flow emits.
// The placement policy consumes EnrollmentCommitted to place the new student
// without blocking the buyer's response.
package events

import "time"

// EnrollmentCommitted is published after the debit+enrollment unit of work
// commits. It is never published for a rejected purchase.
type EnrollmentCommitted struct {
	EnrollmentID string
	UserID       string
	CourseID     string
	CommittedAt  time.Time
}
