// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

// Package postgres provides the PostgreSQL implementation of the auth
// credential store.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/credgate/credgate/internal/auth"
)

// poolIface is the subset of pgxpool.Pool used by the repository. It is
// satisfied by pgxmock.PgxPoolIface in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL.
// All queries are parameterized; user input never reaches the SQL text.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `user_id, user_name, user_email, user_password_hash, user_active,
	       user_password_reset_hash, user_password_reset_timestamp,
	       created_at, updated_at`

// GetByName retrieves a user by exact name.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_name = $1
	`, name)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_name", name).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_NAME_FAILED").
			With("operation", "get user by name").
			With("user_name", name).
			Wrap(err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_id = $1
	`, id)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("user_id", id).
			Wrap(err)
	}
	return user, nil
}

// NameExists reports whether any user has the given name.
func (r *UserRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE user_name = $1)
	`, name).Scan(&exists)
	if err != nil {
		return false, oops.Code("USER_NAME_EXISTS_FAILED").
			With("operation", "check name exists").
			With("user_name", name).
			Wrap(err)
	}
	return exists, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET user_password_hash = $2, updated_at = $3
		WHERE user_id = $1
	`, id, hash, time.Now())
	if err != nil {
		return 0, oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password hash").
			With("user_id", id).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// UpdateName replaces the username. A unique-constraint violation surfaces
// as auth.ErrNameTaken.
func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET user_name = $2, updated_at = $3
		WHERE user_id = $1
	`, id, name, time.Now())
	if err != nil {
		if taken := conflictError(err); taken != nil {
			return 0, oops.Code("USER_NAME_CONFLICT").
				With("user_name", name).
				Wrap(taken)
		}
		return 0, oops.Code("USER_UPDATE_NAME_FAILED").
			With("operation", "update name").
			With("user_id", id).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// UpdateEmail replaces the email address. A unique-constraint violation
// surfaces as auth.ErrEmailTaken.
func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET user_email = $2, updated_at = $3
		WHERE user_id = $1
	`, id, email, time.Now())
	if err != nil {
		if taken := conflictError(err); taken != nil {
			return 0, oops.Code("USER_EMAIL_CONFLICT").
				With("user_id", id).
				Wrap(taken)
		}
		return 0, oops.Code("USER_UPDATE_EMAIL_FAILED").
			With("operation", "update email").
			With("user_id", id).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// SetResetToken stores a reset token and its issue timestamp in one write.
func (r *UserRepository) SetResetToken(ctx context.Context, name, token string, issuedAt time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET user_password_reset_hash = $2,
		    user_password_reset_timestamp = $3,
		    updated_at = $4
		WHERE user_name = $1
	`, name, token, issuedAt, time.Now())
	if err != nil {
		return 0, oops.Code("USER_SET_RESET_TOKEN_FAILED").
			With("operation", "set reset token").
			With("user_name", name).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// GetByNameAndToken retrieves a user matching both name and reset token
// exactly. Both comparisons are case-sensitive.
func (r *UserRepository) GetByNameAndToken(ctx context.Context, name, token string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE user_name = $1 AND user_password_reset_hash = $2
	`, name, token)

	user, err := r.scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_name", name).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_TOKEN_FAILED").
			With("operation", "get user by name and token").
			With("user_name", name).
			Wrap(err)
	}
	return user, nil
}

// ClearResetTokenAndSetPassword sets the new hash and nulls both reset
// columns in a single atomic write keyed by (name, token). Zero affected
// rows means the token was already consumed or never existed.
func (r *UserRepository) ClearResetTokenAndSetPassword(ctx context.Context, name, token, hash string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET user_password_hash = $3,
		    user_password_reset_hash = NULL,
		    user_password_reset_timestamp = NULL,
		    updated_at = $4
		WHERE user_name = $1 AND user_password_reset_hash = $2
	`, name, token, hash, time.Now())
	if err != nil {
		return 0, oops.Code("USER_CLEAR_RESET_FAILED").
			With("operation", "clear reset token and set password").
			With("user_name", name).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// conflictError maps a unique-constraint violation to the matching
// sentinel, or returns nil for any other error.
func conflictError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return auth.ErrEmailTaken
	default:
		return auth.ErrNameTaken
	}
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func (r *UserRepository) scanUser(row pgx.Row) (*auth.User, error) {
	var (
		id            int64
		name          string
		email         string
		passwordHash  string
		active        bool
		resetToken    *string
		resetIssuedAt *time.Time
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(
		&id,
		&name,
		&email,
		&passwordHash,
		&active,
		&resetToken,
		&resetIssuedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	return &auth.User{
		ID:            id,
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Active:        active,
		ResetToken:    resetToken,
		ResetIssuedAt: resetIssuedAt,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
