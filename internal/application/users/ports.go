package users

import (
	"context"

	"github.com/vlehub/user-service/internal/domain"
)

/*
AdminRepo
---------
Persistence port for the administration flows. List and the mutation
methods are implemented with set-based SQL so the repo, not the service,
owns atomicity.
*/
type AdminRepo interface {
	// List returns one page of users plus the total match count.
	// Search filters with a case-insensitive substring match over
	// email OR first name OR last name; ordering is newest first.
	List(ctx context.Context, search string, limit, offset int) ([]domain.User, int, error)

	GetByID(ctx context.Context, id string) (domain.User, error)

	// Update applies the given fields in a single transaction. A nil
	// pointer means "leave unchanged". An email collision with another
	// user fails without mutating anything.
	Update(ctx context.Context, id string, fields UpdateFields) (domain.User, error)

	// Deactivate flips is_active to false only if it is currently true.
	// Returns false both for a missing user and an already-inactive one.
	Deactivate(ctx context.Context, id string) (bool, error)

	// SetActiveBulk applies the flag to every matching id in one
	// set-based statement and returns the number of rows touched.
	SetActiveBulk(ctx context.Context, ids []string, active bool) (int, error)
}

/*
ProfileRepo
-----------
Optional 1:1 profile extension. Wired only when the profile feature is
enabled; the service tolerates a nil ProfileRepo.
*/
type ProfileRepo interface {
	Create(ctx context.Context, p domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

// UpdateFields enumerates the only mutable fields on the admin path.
// Anything else in the request payload is silently ignored upstream.
type UpdateFields struct {
	FirstName *string
	LastName  *string
	Email     *string
	IsActive  *bool
}

func (f UpdateFields) Empty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Email == nil && f.IsActive == nil
}
