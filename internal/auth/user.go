// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"context"
	"crypto/md5" //nolint:gosec // G501: gravatar addressing scheme, not a credential
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUserNameLength = 2
	MaxUserNameLength = 64
	MaxEmailLength    = 64
	MinPasswordLength = 6
)

// userNameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Continue with letters and numbers
// - May contain single spaces between alphanumeric words
var userNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*( [A-Za-z0-9]+)*$`)

// User is a persistent identity record.
//
// ResetTokenHash and ResetIssuedAt are both set or both nil; they are
// written together by UserRepository.SetResetToken and cleared atomically
// by ClearResetTokenAndSetPassword.
type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	Active        bool
	ResetToken    *string
	ResetIssuedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPendingReset returns true if a reset token is currently stored.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != nil && u.ResetIssuedAt != nil
}

// GravatarURL returns the gravatar image URL for the user's email address.
// size is in pixels (1-2048); the default imageset is "mm".
func (u *User) GravatarURL(size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(u.Email)))) //nolint:gosec // G401: gravatar addressing
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mm&r=g&f=y", sum, size)
}

// ValidateUserName validates a username against the naming pattern.
// Username requirements:
// - Length: MinUserNameLength to MaxUserNameLength characters
// - Must start with a letter
// - Letters and numbers only, single spaces allowed between words
func ValidateUserName(name string) error {
	if name == "" {
		return oops.Code("AUTH_INVALID_NAME").Errorf("username cannot be empty")
	}
	if len(name) < MinUserNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("min", MinUserNameLength).
			Errorf("username must be at least %d characters", MinUserNameLength)
	}
	if len(name) > MaxUserNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxUserNameLength).
			Errorf("username must be at most %d characters", MaxUserNameLength)
	}
	if !userNameRegex.MatchString(name) {
		return oops.Code("AUTH_INVALID_NAME").
			Errorf("username must start with a letter and contain only letters, numbers, and single spaces")
	}
	return nil
}

// ValidateEmail validates an email address. The address must parse as a
// bare RFC 5322 address and fit the storage column after trimming.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return oops.Code("AUTH_INVALID_EMAIL").Wrap(err)
	}
	// Reject display-name forms like "Bob <bob@example.org>".
	if addr.Address != email {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email must be a bare address")
	}
	return nil
}

// UserRepository manages user persistence. It is the credential store
// consumed by Service.
//
// Write operations return the number of rows affected; exactly one row is
// the only success condition and callers treat any other count as a
// business-logic failure, not a transport error. Lookups return ErrNotFound
// (wrapped) on a miss. Unique-constraint violations surface as ErrNameTaken
// or ErrEmailTaken.
type UserRepository interface {
	// GetByName retrieves a user by exact name.
	GetByName(ctx context.Context, name string) (*User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// NameExists reports whether any user has the given name.
	NameExists(ctx context.Context, name string) (bool, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) (int64, error)

	// UpdateName replaces the username.
	UpdateName(ctx context.Context, id int64, name string) (int64, error)

	// UpdateEmail replaces the email address.
	UpdateEmail(ctx context.Context, id int64, email string) (int64, error)

	// SetResetToken stores a reset token and its issue timestamp for the
	// named user in one write.
	SetResetToken(ctx context.Context, name, token string, issuedAt time.Time) (int64, error)

	// GetByNameAndToken retrieves a user matching both name and stored
	// reset token exactly (case-sensitive).
	GetByNameAndToken(ctx context.Context, name, token string) (*User, error)

	// ClearResetTokenAndSetPassword sets the new password hash and nulls
	// both reset columns in a single atomic write keyed by (name, token).
	// Zero affected rows means the token was already consumed or never
	// existed.
	ClearResetTokenAndSetPassword(ctx context.Context, name, token, hash string) (int64, error)
}
