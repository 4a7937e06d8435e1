package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vlehub/user-service/internal/application/auth"
	"github.com/vlehub/user-service/internal/domain"
)

type ottEntry struct {
	userID    string
	expiresAt time.Time
}

// OneTimeTokenStore is the in-memory auth.OneTimeTokenStore fallback.
type OneTimeTokenStore struct {
	mu      sync.Mutex
	entries map[string]ottEntry // key: kind + ":" + token
}

func NewOneTimeTokenStore() *OneTimeTokenStore {
	return &OneTimeTokenStore{entries: make(map[string]ottEntry)}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, kind auth.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[string(kind)+":"+token] = ottEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := string(kind) + ":" + token
	e, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || time.Now().After(e.expiresAt) {
		return "", domain.ErrTokenInvalid()
	}
	return e.userID, nil
}
