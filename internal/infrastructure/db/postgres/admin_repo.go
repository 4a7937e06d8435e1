package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/vlehub/user-service/internal/application/users"
	"github.com/vlehub/user-service/internal/domain"
)

// AdminRepo implements users.AdminRepo on Postgres. The mutating paths
// run as single statements or explicit transactions so concurrent admin
// actions cannot lose updates.
type AdminRepo struct {
	db *sql.DB
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: db}
}

func (r *AdminRepo) List(ctx context.Context, search string, limit, offset int) ([]domain.User, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = `WHERE email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+escapeLike(search)+"%")
	}

	countQ := `SELECT COUNT(1) FROM users ` + where + `;`
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}

	n := len(args)
	listQ := `
SELECT ` + userColumns + `
FROM users ` + where + `
ORDER BY created_at DESC, id DESC
LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2) + `;
`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQ, args...)
	if err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var list []domain.User
	for rows.Next() {
		ur, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, domain.ErrDBUnavailable(err)
		}
		list = append(list, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.ErrDBUnavailable(err)
	}
	return list, total, nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return NewUserRepo(r.db).GetByID(ctx, id)
}

// Update applies the mutable fields inside one transaction. The row is
// locked first so two concurrent updates serialize instead of losing
// writes; an email collision rolls back with no mutation.
func (r *AdminRepo) Update(ctx context.Context, id string, fields users.UpdateFields) (domain.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	defer tx.Rollback()

	const lockQ = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
FOR UPDATE;
`
	ur, err := scanUserRow(tx.QueryRowContext(ctx, lockQ, id))
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}

	if fields.FirstName != nil {
		ur.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		ur.LastName = *fields.LastName
	}
	if fields.Email != nil {
		ur.Email = strings.ToLower(strings.TrimSpace(*fields.Email))
	}
	if fields.IsActive != nil {
		ur.IsActive = *fields.IsActive
	}

	const updateQ = `
UPDATE users
SET email = $2,
    first_name = $3,
    last_name = $4,
    is_active = $5,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;
`
	ur, err = scanUserRow(tx.QueryRowContext(ctx, updateQ,
		id, ur.Email, ur.FirstName, ur.LastName, ur.IsActive,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

// Deactivate flips is_active only when currently true. RowsAffected==0
// covers both "not found" and "already inactive".
func (r *AdminRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	const q = `
UPDATE users
SET is_active = FALSE,
    updated_at = NOW()
WHERE id = $1 AND is_active = TRUE;
`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetActiveBulk is one set-based statement, atomic by construction.
func (r *AdminRepo) SetActiveBulk(ctx context.Context, ids []string, active bool) (int, error) {
	const q = `
UPDATE users
SET is_active = $2,
    updated_at = NOW()
WHERE id = ANY($1);
`
	res, err := r.db.ExecContext(ctx, q, ids, active)
	if err != nil {
		return 0, domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// escapeLike escapes LIKE metacharacters in a search term so they match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
