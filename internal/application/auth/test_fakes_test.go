package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vlehub/user-service/internal/domain"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

// put inserts a user directly, bypassing Create's uniqueness check.
func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSigner struct {
	signFn func(userID, email string, ttl time.Duration) (string, error)
}

func (s *fakeSigner) SignAccessToken(userID string, email string, ttl time.Duration) (string, error) {
	if s.signFn != nil {
		return s.signFn(userID, email, ttl)
	}
	return fmt.Sprintf("jwt(%s,%s)", userID, email), nil
}

func (s *fakeSigner) VerifyAccessToken(token string) (TokenClaims, error) {
	return TokenClaims{}, nil
}

type fakeSessions struct {
	mu sync.Mutex

	byToken map[string]string // refreshToken -> userID
	seq     int

	createErr  error
	rotateErr  error
	revokeErr  error
	getUserErr error

	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byToken: map[string]string{}}
}

func (s *fakeSessions) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return "", s.createErr
	}
	s.seq++
	tok := fmt.Sprintf("rft%d:%s", s.seq, userID)
	s.byToken[tok] = userID
	return tok, nil
}

func (s *fakeSessions) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rotateErr != nil {
		return "", s.rotateErr
	}
	uid, ok := s.byToken[oldToken]
	if !ok {
		return "", domain.ErrRefreshTokenInvalid()
	}
	delete(s.byToken, oldToken)
	s.seq++
	newTok := fmt.Sprintf("rft%d:%s", s.seq, uid)
	s.byToken[newTok] = uid
	return newTok, nil
}

func (s *fakeSessions) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revokeErr != nil {
		return s.revokeErr
	}
	delete(s.byToken, token)
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *fakeSessions) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getUserErr != nil {
		return "", s.getUserErr
	}
	uid, ok := s.byToken[token]
	if !ok {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return uid, nil
}

type fakeOTT struct {
	mu sync.Mutex

	data map[OneTimeTokenKind]map[string]string // kind -> token -> userID

	saveErr    error
	consumeErr error
}

func newFakeOTT() *fakeOTT {
	return &fakeOTT{data: map[OneTimeTokenKind]map[string]string{}}
}

func (o *fakeOTT) Save(ctx context.Context, kind OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.saveErr != nil {
		return o.saveErr
	}
	if o.data[kind] == nil {
		o.data[kind] = map[string]string{}
	}
	o.data[kind][token] = userID
	return nil
}

func (o *fakeOTT) Consume(ctx context.Context, kind OneTimeTokenKind, token string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.consumeErr != nil {
		return "", o.consumeErr
	}
	m := o.data[kind]
	uid, ok := m[token]
	if !ok {
		return "", domain.ErrTokenInvalid()
	}
	delete(m, token)
	return uid, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sendErr error
	sent    []Notification
}

func (n *fakeNotifier) Send(ctx context.Context, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *fakeNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

/*
Service factory for tests
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeHasher, *fakeSigner, *fakeSessions, *fakeOTT, *fakeNotifier) {
	t.Helper()

	users := newFakeUserRepo()
	hasher := &fakeHasher{}
	signer := &fakeSigner{}
	sessions := newFakeSessions()
	ott := newFakeOTT()
	notifier := &fakeNotifier{}

	cfg := Config{
		AccessTTL:             15 * time.Minute,
		RefreshTTL:            7 * 24 * time.Hour,
		PasswordResetTokenTTL: 30 * time.Minute,
		VerifyEmailTokenTTL:   24 * time.Hour,
	}

	svc := NewService(users, hasher, signer, sessions, ott, notifier, cfg)
	if svc == nil {
		t.Fatalf("svc is nil")
	}

	return svc, users, hasher, signer, sessions, ott, notifier
}

func domainCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}
