package auth

import (
	"context"

	"github.com/vlehub/user-service/internal/domain"
)

// Refresh rotates a refresh token and issues a new access token.
// The old refresh token is invalidated atomically by the session store;
// presenting it again fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, domain.User, error) {
	if refreshToken == "" {
		return AuthTokens{}, domain.User{}, domain.ErrRefreshTokenInvalid()
	}

	userID, err := s.sessions.GetUserIDByRefreshToken(ctx, refreshToken)
	if err != nil {
		return AuthTokens{}, domain.User{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, domain.User{}, domain.ErrRefreshTokenInvalid()
	}
	if !u.IsActive {
		return AuthTokens{}, domain.User{}, domain.ErrRefreshTokenInvalid()
	}

	newRefresh, err := s.sessions.RotateRefreshToken(ctx, refreshToken, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, domain.User{}, err
	}

	access, err := s.signer.SignAccessToken(u.ID, u.Email, s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.User{}, domain.ErrTokenSignFailed(err)
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, u, nil
}

// Logout revokes a refresh token. Revoking an unknown or already-revoked
// token is a no-op so the endpoint stays idempotent.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshToken(ctx, refreshToken)
}
