package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/vlehub/user-service/internal/domain"
)

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// SessionStore is the in-memory auth.SessionStore used when Redis is
// unavailable (dev) and in tests. Same rotation contract as the Redis
// implementation.
type SessionStore struct {
	mu      sync.Mutex
	byToken map[string]sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byToken: make(map[string]sessionEntry)}
}

func (s *SessionStore) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", domain.ErrMissingField("user_id")
	}

	token, err := opaqueToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token] = sessionEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

func (s *SessionStore) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byToken[oldToken]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.byToken, oldToken)
		return "", domain.ErrRefreshTokenInvalid()
	}

	token, err := opaqueToken()
	if err != nil {
		return "", err
	}

	delete(s.byToken, oldToken)
	s.byToken[token] = sessionEntry{userID: e.userID, expiresAt: time.Now().Add(ttl)}
	return token, nil
}

func (s *SessionStore) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
	return nil
}

func (s *SessionStore) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byToken[token]
	if !ok || time.Now().After(e.expiresAt) {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return e.userID, nil
}

func opaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
