package auth

import (
	"context"

	"github.com/vlehub/user-service/internal/domain"
)

// PasswordResetRequest generates a single-use reset token and dispatches
// it via the notifier, but ONLY if a matching user exists. The error
// surface is identical for both outcomes: callers must not be able to
// tell whether the email matched an account.
func (s *Service) PasswordResetRequest(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return nil
		}
		// Infrastructure failures are swallowed too; the handler response
		// is uniform regardless. Logged at the transport boundary.
		return nil
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return nil
	}

	if err := s.ott.Save(ctx, TokenPasswordReset, token, u.ID, s.passwordResetTTL); err != nil {
		return nil
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, Notification{
			UserID: u.ID,
			Email:  u.Email,
			Kind:   NotifyPasswordReset,
			Token:  token,
		})
	}

	return nil
}
