package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vlehub/user-service/internal/domain"
)

// RegisterInput carries the registration fields. Email and Password are
// required; the name and phone fields are optional.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a user, runs the post-create hooks, issues tokens and
// requests a verification notification. Password policy is enforced here
// so every caller (HTTP or otherwise) gets the same rules.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Email = normalizeEmail(in.Email)

	if in.Email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if !strings.Contains(in.Email, "@") {
		return RegisterResult{}, domain.ErrInvalidField("email", "invalid format")
	}
	if in.Password == "" {
		return RegisterResult{}, domain.ErrMissingField("password")
	}
	if err := CheckPasswordPolicy(in.Password, in.Email, in.FirstName, in.LastName); err != nil {
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		IsActive:     true,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	for _, hook := range s.postCreate {
		if err := hook(ctx, created); err != nil {
			return RegisterResult{}, err
		}
	}

	toks, err := s.issueTokens(ctx, created)
	if err != nil {
		return RegisterResult{}, err
	}

	// Verification email is best-effort: registration already succeeded.
	// The notification only goes out once a consumable token is stored.
	if s.notifier != nil {
		if token, err := newOpaqueToken(32); err == nil {
			if err := s.ott.Save(ctx, TokenVerifyEmail, token, created.ID, s.verifyEmailTTL); err == nil {
				_ = s.notifier.Send(ctx, Notification{
					UserID: created.ID,
					Email:  created.Email,
					Kind:   NotifyVerifyEmail,
					Token:  token,
				})
			}
		}
	}

	return RegisterResult{User: created, Tokens: toks}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
