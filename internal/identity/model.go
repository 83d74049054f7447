package identity

import "time"

// User represents a registered student. Staff users administer the catalog.
type User struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	PasswordHash []byte
	Staff        bool
	TokenVersion int
	CreatedAt    time.Time
}

// Credentials is the email/password pair presented at login.
type Credentials struct {
	Email    string
	Password string
}

// RegisterInput captures data required to register a student.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}
