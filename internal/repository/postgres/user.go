package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Dinesh751/hms-auth-service/internal/apperrors"
	"github.com/Dinesh751/hms-auth-service/internal/models"
)

// DBTX is the subset of pgxpool.Pool and pgx.Tx the repositories need.
// Allows tests to run every repo method inside a rolled back transaction.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password_hash, role, enabled, created_at, updated_at
`

func (r *UserRepo) CreateUser(ctx context.Context, email string, hashedPassword string, role models.Role) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), email, hashedPassword, role.String())
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByEmail = `-- name: getUserByEmail
SELECT id, email, password_hash, role, enabled, created_at, updated_at
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const existsByEmail = `-- name: existsByEmail
SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
`

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, existsByEmail, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const setEnabled = `-- name: setEnabled
UPDATE users
SET enabled = $2, updated_at = now()
WHERE email = $1
RETURNING id, email, password_hash, role, enabled, created_at, updated_at
`

func (r *UserRepo) SetEnabled(ctx context.Context, email string, enabled bool) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setEnabled, email, enabled)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updatePassword = `-- name: updatePassword
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE email = $1
RETURNING id, email, password_hash, role, enabled, created_at, updated_at
`

func (r *UserRepo) UpdatePassword(ctx context.Context, email string, hashedPassword string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updatePassword, email, hashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const countByRole = `-- name: countByRole
SELECT count(*) FROM users WHERE role = $1
`

func (r *UserRepo) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx, countByRole, role.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

const countEnabled = `-- name: countEnabled
SELECT count(*) FROM users WHERE enabled
`

func (r *UserRepo) CountEnabled(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx, countEnabled).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &role, &u.Enabled, &u.CreatedAt, &u.UpdatedAt)
	u.Role = models.Role(role)
	return u, err
}
