package postgres

import (
	"context"
	"database/sql"

	"github.com/vlehub/user-service/internal/domain"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Create inserts an empty-ish profile for a user. Inserting twice for the
// same user is a no-op, so the post-registration hook stays idempotent.
func (r *ProfileRepo) Create(ctx context.Context, p domain.Profile) error {
	if p.UserID == "" {
		return domain.ErrMissingField("user_id")
	}

	const q = `
INSERT INTO user_profiles (user_id, bio, avatar_url, date_of_birth, location, website, is_public, show_email)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (user_id) DO NOTHING;
`
	_, err := r.db.ExecContext(ctx, q,
		p.UserID, p.Bio, p.AvatarURL, p.DateOfBirth, p.Location, p.Website, p.IsPublic, p.ShowEmail,
	)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	return nil
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	if userID == "" {
		return domain.Profile{}, domain.ErrMissingField("user_id")
	}

	const q = `
SELECT user_id, bio, avatar_url, date_of_birth, location, website, is_public, show_email, created_at, updated_at
FROM user_profiles
WHERE user_id = $1
LIMIT 1;
`
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID,
		&p.Bio,
		&p.AvatarURL,
		&p.DateOfBirth,
		&p.Location,
		&p.Website,
		&p.IsPublic,
		&p.ShowEmail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.Profile{}, domain.ErrProfileNotFound()
		}
		return domain.Profile{}, domain.ErrDBUnavailable(err)
	}
	return p, nil
}
