package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vlehub/user-service/internal/application/users"
	"github.com/vlehub/user-service/internal/domain"
)

// UserRepo is an in-memory store implementing both auth.UserRepo and
// users.AdminRepo. Used by handler tests and dev tooling; behavior
// mirrors the Postgres implementation, including the coarse Deactivate
// return and set-based bulk semantics.
type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

// ---------- users.AdminRepo ----------

func (r *UserRepo) List(ctx context.Context, search string, limit, offset int) ([]domain.User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(search)
	var all []domain.User
	for _, u := range r.byID {
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Email), term) &&
			!strings.Contains(strings.ToLower(u.FirstName), term) &&
			!strings.Contains(strings.ToLower(u.LastName), term) {
			continue
		}
		all = append(all, u)
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, fields users.UpdateFields) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}

	if fields.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*fields.Email))
		if other, exists := r.byEmail[email]; exists && other != id {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		delete(r.byEmail, u.Email)
		u.Email = email
		r.byEmail[email] = id
	}
	if fields.FirstName != nil {
		u.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		u.LastName = *fields.LastName
	}
	if fields.IsActive != nil {
		u.IsActive = *fields.IsActive
	}
	u.UpdatedAt = time.Now()

	r.byID[id] = u
	return u, nil
}

func (r *UserRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || !u.IsActive {
		return false, nil
	}
	u.IsActive = false
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return true, nil
}

func (r *UserRepo) SetActiveBulk(ctx context.Context, ids []string, active bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, id := range ids {
		u, ok := r.byID[id]
		if !ok {
			continue
		}
		u.IsActive = active
		u.UpdatedAt = time.Now()
		r.byID[id] = u
		n++
	}
	return n, nil
}

// ---------- users.ProfileRepo ----------

// ProfileRepo is the in-memory profile store.
type ProfileRepo struct {
	mu       sync.RWMutex
	byUserID map[string]domain.Profile
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{byUserID: make(map[string]domain.Profile)}
}

func (r *ProfileRepo) Create(ctx context.Context, p domain.Profile) error {
	if p.UserID == "" {
		return domain.ErrMissingField("user_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUserID[p.UserID]; exists {
		return nil // idempotent, like ON CONFLICT DO NOTHING
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.byUserID[p.UserID] = p
	return nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byUserID[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound()
	}
	return p, nil
}
