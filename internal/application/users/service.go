package users

import (
	"context"
	"strings"

	"github.com/vlehub/user-service/internal/domain"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service implements the user administration flows: paginated listing
// with search, detail lookup, field-level update, soft-deactivation and
// bulk activate/deactivate.
type Service struct {
	repo     AdminRepo
	profiles ProfileRepo // nil when the profile feature is disabled
}

func NewService(repo AdminRepo, profiles ProfileRepo) *Service {
	return &Service{repo: repo, profiles: profiles}
}

// ListResult mirrors the wire pagination block.
type ListResult struct {
	Users       []domain.User
	TotalCount  int
	PageCount   int
	CurrentPage int
	HasNext     bool
	HasPrevious bool
}

// List returns one 1-based page of users. A page below 1 is treated as
// page 1; a page past the end returns an empty list, not an error.
func (s *Service) List(ctx context.Context, search string, page, pageSize int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	search = strings.TrimSpace(search)
	offset := (page - 1) * pageSize

	list, total, err := s.repo.List(ctx, search, pageSize, offset)
	if err != nil {
		return ListResult{}, err
	}

	pageCount := total / pageSize
	if total%pageSize != 0 {
		pageCount++
	}
	if pageCount < 1 {
		pageCount = 1
	}

	return ListResult{
		Users:       list,
		TotalCount:  total,
		PageCount:   pageCount,
		CurrentPage: page,
		HasNext:     page < pageCount,
		HasPrevious: page > 1 && total > 0,
	}, nil
}

// Detail is a user plus its profile, when one exists.
type Detail struct {
	User    domain.User
	Profile *domain.Profile
}

// GetByID fetches a user and, if the profile feature is enabled, its
// profile. A missing profile is not an error.
func (s *Service) GetByID(ctx context.Context, id string) (Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Detail{}, domain.ErrMissingField("id")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{User: u}
	if s.profiles != nil {
		p, err := s.profiles.GetByUserID(ctx, id)
		if err == nil {
			d.Profile = &p
		} else if !domain.Is(err, "profile_not_found") {
			return Detail{}, err
		}
	}
	return d, nil
}

// Update applies the mutable fields. Email updates must keep the global
// uniqueness invariant; a collision fails with a validation error and no
// mutation.
func (s *Service) Update(ctx context.Context, id string, fields UpdateFields) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	if fields.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*fields.Email))
		if email == "" {
			return domain.User{}, domain.ErrMissingField("email")
		}
		if !strings.Contains(email, "@") {
			return domain.User{}, domain.ErrInvalidField("email", "invalid format")
		}
		fields.Email = &email
	}

	if fields.Empty() {
		// Nothing mutable in the payload; return the current state.
		return s.repo.GetByID(ctx, id)
	}

	return s.repo.Update(ctx, id, fields)
}

// Deactivate soft-deletes a user. The boolean collapses "not found" and
// "already inactive" into false; callers wanting a finer signal must use
// GetByID. Kept coarse on purpose.
func (s *Service) Deactivate(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, domain.ErrMissingField("id")
	}
	return s.repo.Deactivate(ctx, id)
}

// Bulk operations.
const (
	OpActivate   = "activate"
	OpDeactivate = "deactivate"
)

type BulkResult struct {
	SuccessCount   int
	TotalRequested int
}

// BulkOperation activates or deactivates every matching id in one
// set-based update. Validation happens before any mutation; missing ids
// are silently excluded from the success count.
func (s *Service) BulkOperation(ctx context.Context, ids []string, op string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, domain.ErrMissingField("user_ids")
	}
	var active bool
	switch op {
	case OpActivate:
		active = true
	case OpDeactivate:
		active = false
	default:
		return BulkResult{}, domain.ErrInvalidBulkOperation(op)
	}

	n, err := s.repo.SetActiveBulk(ctx, ids, active)
	if err != nil {
		return BulkResult{}, err
	}
	return BulkResult{SuccessCount: n, TotalRequested: len(ids)}, nil
}
