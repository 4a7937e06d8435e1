package postgres

import "time"

type userRow struct {
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

const userColumns = `id, email, password_hash, first_name, last_name, phone, is_active, is_email_verified, created_at, updated_at`
