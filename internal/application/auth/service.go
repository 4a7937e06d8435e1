package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/vlehub/user-service/internal/domain"
)

type Service struct {
	users  UserRepo
	hasher PasswordHasher
	signer TokenSigner

	sessions SessionStore
	ott      OneTimeTokenStore
	notifier Notifier

	accessTTL        time.Duration
	refreshTTL       time.Duration
	passwordResetTTL time.Duration
	verifyEmailTTL   time.Duration

	// postCreate hooks run synchronously after a user is persisted, in
	// registration order. Profile auto-creation is wired here when the
	// profile feature is enabled, so the dependency is visible in the
	// call graph instead of hidden behind a signal.
	postCreate []PostCreateHook
}

type PostCreateHook func(ctx context.Context, u domain.User) error

type Config struct {
	AccessTTL             time.Duration
	RefreshTTL            time.Duration
	PasswordResetTokenTTL time.Duration
	VerifyEmailTokenTTL   time.Duration
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	sessions SessionStore,
	ott OneTimeTokenStore,
	notifier Notifier,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		signer:   signer,
		sessions: sessions,
		ott:      ott,
		notifier: notifier,

		accessTTL:        accessTTL,
		refreshTTL:       refreshTTL,
		passwordResetTTL: resetTTL,
		verifyEmailTTL:   verifyTTL,
	}
}

// WithPostCreateHook appends a hook invoked after user creation.
func (s *Service) WithPostCreateHook(fn PostCreateHook) *Service {
	if fn != nil {
		s.postCreate = append(s.postCreate, fn)
	}
	return s
}

// AuthTokens is the common token output for handlers/DTO mapping.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64  // seconds
	TokenType    string // "Bearer"
}

type RegisterResult struct {
	User   domain.User
	Tokens AuthTokens
}

type LoginResult struct {
	User   domain.User
	Tokens AuthTokens
}

// issueTokens issues an access token + refresh token for a user.
func (s *Service) issueTokens(ctx context.Context, u domain.User) (AuthTokens, error) {
	access, err := s.signer.SignAccessToken(u.ID, u.Email, s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenSignFailed(err)
	}

	refresh, err := s.sessions.CreateRefreshToken(ctx, u.ID, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// GetUserByID resolves the current user for /auth/me.
func (s *Service) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
