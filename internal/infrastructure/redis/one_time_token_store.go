package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vlehub/user-service/internal/application/auth"
	"github.com/vlehub/user-service/internal/domain"
)

// OneTimeTokenStore holds single-use reset / verification tokens.
type OneTimeTokenStore struct {
	rdb    *goredis.Client
	prefix string
}

func NewOneTimeTokenStore(c *Client) *OneTimeTokenStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &OneTimeTokenStore{
		rdb:    rdb,
		prefix: "ott:",
	}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, kind auth.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	userID = strings.TrimSpace(userID)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis one-time-token store not configured")
	}

	// overwrite is fine: a new request generates a new token anyway
	if err := s.rdb.Set(ctx, s.key(kind, token), userID, ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

// Consume atomically fetches and deletes the token, enforcing single use.
func (s *OneTimeTokenStore) Consume(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrTokenInvalid()
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	uid, err := s.rdb.GetDel(ctx, s.key(kind, token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrTokenInvalid()
		}
		return "", domain.ErrRedisUnavailable(err)
	}
	if strings.TrimSpace(uid) == "" {
		return "", domain.ErrTokenInvalid()
	}
	return uid, nil
}

func (s *OneTimeTokenStore) key(kind auth.OneTimeTokenKind, token string) string {
	return fmt.Sprintf("%s%s:%s", s.prefix, kind, token)
}
