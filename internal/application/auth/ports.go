package auth

import (
	"context"
	"time"

	"github.com/vlehub/user-service/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the auth flows need, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt / argon2.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID string
	Email  string
	Exp    time.Time
}

type TokenSigner interface {
	SignAccessToken(userID string, email string, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
SessionStore
------------
Refresh token management. Backed by Redis in production, memory in dev.
Rotation is the contract: every successful refresh invalidates the prior
refresh token and issues a new one.
*/
type SessionStore interface {
	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (newToken string, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	GetUserIDByRefreshToken(ctx context.Context, token string) (string, error)
}

/*
OneTimeTokenStore
-----------------
Opaque single-use tokens for email verification and password reset.
*/
type OneTimeTokenKind string

const (
	TokenVerifyEmail   OneTimeTokenKind = "verify_email"
	TokenPasswordReset OneTimeTokenKind = "password_reset"
)

type OneTimeTokenStore interface {
	Save(ctx context.Context, kind OneTimeTokenKind, token string, userID string, ttl time.Duration) error
	Consume(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error)
}

/*
Notifier
--------
The notification collaborator: publishes email dispatch requests.
A separate mailer consumes these; this service never sends email itself.
*/
type NotificationKind string

const (
	NotifyVerifyEmail   NotificationKind = "verify_email"
	NotifyPasswordReset NotificationKind = "password_reset"
)

type Notification struct {
	UserID string
	Email  string
	Kind   NotificationKind
	Token  string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
