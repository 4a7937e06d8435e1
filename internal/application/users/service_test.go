package users

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vlehub/user-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeAdminRepo struct {
	mu    sync.Mutex
	users map[string]domain.User

	listErr   error
	getErr    error
	updateErr error
	deactErr  error
	bulkErr   error
}

func newFakeAdminRepo(users ...domain.User) *fakeAdminRepo {
	f := &fakeAdminRepo{users: map[string]domain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeAdminRepo) List(ctx context.Context, search string, limit, offset int) ([]domain.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, 0, f.listErr
	}

	var all []domain.User
	needle := strings.ToLower(search)
	for _, u := range f.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.Email), needle) &&
			!strings.Contains(strings.ToLower(u.FirstName), needle) &&
			!strings.Contains(strings.ToLower(u.LastName), needle) {
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

func (f *fakeAdminRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return domain.User{}, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeAdminRepo) Update(ctx context.Context, id string, fields UpdateFields) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return domain.User{}, f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	if fields.Email != nil {
		for oid, other := range f.users {
			if oid != id && other.Email == *fields.Email {
				return domain.User{}, domain.ErrEmailAlreadyExists()
			}
		}
		u.Email = *fields.Email
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
	f.users[id] = u
	return u, nil
}

func (f *fakeAdminRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deactErr != nil {
		return false, f.deactErr
	}
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return false, nil
	}
	u.IsActive = false
	f.users[id] = u
	return true, nil
}

func (f *fakeAdminRepo) SetActiveBulk(ctx context.Context, ids []string, active bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	n := 0
	for _, id := range ids {
		u, ok := f.users[id]
		if !ok {
			continue
		}
		u.IsActive = active
		f.users[id] = u
		n++
	}
	return n, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
	getErr   error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]domain.Profile{}}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.UserID]; ok {
		return nil
	}
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return domain.Profile{}, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound()
	}
	return p, nil
}

func seedUsers(n int) []domain.User {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.User, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.User{
			ID:        string(rune('a'+i%26)) + "-user",
			Email:     string(rune('a'+i%26)) + "@example.com",
			FirstName: "User",
			IsActive:  true,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}

func requireCode(t *testing.T, err error, want string) {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.Code != want {
		t.Fatalf("expected code %q, got %q", want, de.Code)
	}
}

/*
List / pagination
*/

func TestList_PaginationMath(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(seedUsers(25)...), nil)

	res, err := svc.List(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.TotalCount != 25 || res.PageCount != 3 || res.CurrentPage != 1 {
		t.Fatalf("unexpected pagination %+v", res)
	}
	if !res.HasNext || res.HasPrevious {
		t.Fatalf("expected has_next only on page 1, got %+v", res)
	}
	if len(res.Users) != 10 {
		t.Fatalf("expected 10 users, got %d", len(res.Users))
	}

	res, err = svc.List(context.Background(), "", 3, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Users) != 5 || res.HasNext || !res.HasPrevious {
		t.Fatalf("unexpected last page %+v", res)
	}
}

func TestList_NewestFirst(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(seedUsers(5)...), nil)

	res, err := svc.List(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(res.Users); i++ {
		if res.Users[i].CreatedAt.After(res.Users[i-1].CreatedAt) {
			t.Fatalf("expected newest-first ordering")
		}
	}
}

func TestList_PageBelowOne_TreatedAsFirst(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(seedUsers(5)...), nil)

	res, err := svc.List(context.Background(), "", 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.CurrentPage != 1 || len(res.Users) != 5 {
		t.Fatalf("expected page 1 with 5 users, got %+v", res)
	}
}

func TestList_PagePastEnd_EmptyList(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(seedUsers(5)...), nil)

	res, err := svc.List(context.Background(), "", 99, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Users) != 0 {
		t.Fatalf("expected empty page, got %d users", len(res.Users))
	}
	if res.TotalCount != 5 || res.CurrentPage != 99 || res.HasNext {
		t.Fatalf("unexpected pagination %+v", res)
	}
	if !res.HasPrevious {
		t.Fatalf("expected has_previous past the end")
	}
}

func TestList_EmptyStore_PageCountIsOne(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(), nil)

	res, err := svc.List(context.Background(), "", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.PageCount != 1 || res.HasNext || res.HasPrevious {
		t.Fatalf("unexpected pagination %+v", res)
	}
}

func TestList_SearchFiltersCaseInsensitively(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(
		domain.User{ID: "u1", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith", IsActive: true},
		domain.User{ID: "u2", Email: "bob@example.com", FirstName: "Bob", LastName: "Jones", IsActive: true},
	)
	svc := NewService(repo, nil)

	res, err := svc.List(context.Background(), "ALIC", 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Users) != 1 || res.Users[0].ID != "u1" {
		t.Fatalf("expected only alice, got %+v", res.Users)
	}
}

func TestList_ClampsPageSize(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(seedUsers(5)...)
	svc := NewService(repo, nil)

	res, err := svc.List(context.Background(), "", 1, 100000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// With 5 users any clamp passes; what matters is the page math using
	// the clamped size, not the raw request.
	if res.PageCount != 1 {
		t.Fatalf("expected single page, got %+v", res)
	}

	res, err = svc.List(context.Background(), "", 1, -3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.PageCount != 1 || len(res.Users) != 5 {
		t.Fatalf("expected default page size to cover 5 users, got %+v", res)
	}
}

/*
Detail
*/

func TestGetByID_MissingUser_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(), nil)

	_, err := svc.GetByID(context.Background(), "ghost")
	if err == nil {
		t.Fatalf("expected error")
	}
	requireCode(t, err, "user_not_found")
}

func TestGetByID_WithProfile(t *testing.T) {
	t.Parallel()

	profiles := newFakeProfileRepo()
	_ = profiles.Create(context.Background(), domain.Profile{UserID: "u1", Bio: "hi", IsPublic: true})

	svc := NewService(newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", IsActive: true}), profiles)

	d, err := svc.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Profile == nil || d.Profile.Bio != "hi" {
		t.Fatalf("expected profile attached, got %+v", d.Profile)
	}
}

func TestGetByID_MissingProfile_Tolerated(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", IsActive: true}), newFakeProfileRepo())

	d, err := svc.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.Profile != nil {
		t.Fatalf("expected nil profile")
	}
}

/*
Update
*/

func TestUpdate_AppliesOnlyProvidedFields(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", FirstName: "Old", LastName: "Name", IsActive: true})
	svc := NewService(repo, nil)

	first := "New"
	u, err := svc.Update(context.Background(), "u1", UpdateFields{FirstName: &first})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.FirstName != "New" || u.LastName != "Name" || u.Email != "a@b.com" {
		t.Fatalf("unexpected result %+v", u)
	}
}

func TestUpdate_EmptyPayload_ReturnsCurrentState(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", FirstName: "Keep", IsActive: true})
	svc := NewService(repo, nil)

	u, err := svc.Update(context.Background(), "u1", UpdateFields{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.FirstName != "Keep" {
		t.Fatalf("expected unchanged user, got %+v", u)
	}
}

func TestUpdate_EmailNormalizedAndValidated(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})
	svc := NewService(repo, nil)

	email := "  NEW@B.COM "
	u, err := svc.Update(context.Background(), "u1", UpdateFields{Email: &email})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Email != "new@b.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}

	bad := "not-an-email"
	_, err = svc.Update(context.Background(), "u1", UpdateFields{Email: &bad})
	if err == nil {
		t.Fatalf("expected error")
	}
	requireCode(t, err, "invalid_field")
}

func TestUpdate_EmailCollision_ValidationError(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(
		domain.User{ID: "u1", Email: "a@b.com", IsActive: true},
		domain.User{ID: "u2", Email: "taken@b.com", IsActive: true},
	)
	svc := NewService(repo, nil)

	email := "taken@b.com"
	_, err := svc.Update(context.Background(), "u1", UpdateFields{Email: &email})
	if err == nil {
		t.Fatalf("expected error")
	}
	requireCode(t, err, "email_already_exists")
}

func TestUpdate_MissingUser_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAdminRepo(), nil)

	first := "X"
	_, err := svc.Update(context.Background(), "ghost", UpdateFields{FirstName: &first})
	if err == nil {
		t.Fatalf("expected error")
	}
	requireCode(t, err, "user_not_found")
}

/*
Deactivate + bulk
*/

func TestDeactivate_CoarseBoolean(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})
	svc := NewService(repo, nil)

	ok, err := svc.Deactivate(context.Background(), "u1")
	if err != nil || !ok {
		t.Fatalf("expected true, got ok=%v err=%v", ok, err)
	}

	// Second call: already inactive, indistinguishable from missing.
	ok, err = svc.Deactivate(context.Background(), "u1")
	if err != nil || ok {
		t.Fatalf("expected false on repeat, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.Deactivate(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("expected false for missing, got ok=%v err=%v", ok, err)
	}
}

func TestBulkOperation_ValidatesBeforeMutation(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(domain.User{ID: "u1", Email: "a@b.com", IsActive: true})
	svc := NewService(repo, nil)

	_, err := svc.BulkOperation(context.Background(), nil, OpDeactivate)
	if err == nil {
		t.Fatalf("expected error for empty ids")
	}
	requireCode(t, err, "missing_field")

	_, err = svc.BulkOperation(context.Background(), []string{"u1"}, "promote")
	if err == nil {
		t.Fatalf("expected error for unknown op")
	}
	requireCode(t, err, "invalid_bulk_operation")

	u, _ := repo.GetByID(context.Background(), "u1")
	if !u.IsActive {
		t.Fatalf("expected no mutation on validation failure")
	}
}

func TestBulkOperation_SkipsMissingIDs(t *testing.T) {
	t.Parallel()

	repo := newFakeAdminRepo(
		domain.User{ID: "u1", Email: "a@b.com", IsActive: false},
		domain.User{ID: "u2", Email: "b@b.com", IsActive: false},
	)
	svc := NewService(repo, nil)

	res, err := svc.BulkOperation(context.Background(), []string{"u1", "ghost", "u2"}, OpActivate)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if res.SuccessCount != 2 || res.TotalRequested != 3 {
		t.Fatalf("unexpected result %+v", res)
	}

	u, _ := repo.GetByID(context.Background(), "u1")
	if !u.IsActive {
		t.Fatalf("expected u1 activated")
	}
}
