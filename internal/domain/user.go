package domain

import "time"

// User is the authenticated principal. Identity is email-keyed; the ID is
// assigned at creation and never changes. Users are never hard-deleted:
// IsActive=false is the terminal removal state.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Phone           string
	IsActive        bool
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile is the optional 1:1 extension of a User. It is created by the
// post-registration hook when profile management is enabled and persists
// even after the owning user is deactivated.
type Profile struct {
	UserID      string
	Bio         string
	AvatarURL   string
	DateOfBirth *time.Time
	Location    string
	Website     string
	IsPublic    bool
	ShowEmail   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
