// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/mocks"
)

func newResetService(t *testing.T, cfg auth.Config) (*auth.Service, *mocks.MockUserRepository, *mocks.MockMailer) {
	t.Helper()
	users := mocks.NewMockUserRepository(t)
	sessions := mocks.NewMockSessionStore(t)
	hasher := mocks.NewMockPasswordHasher(t)
	mailer := mocks.NewMockMailer(t)
	svc, err := auth.NewService(users, sessions, hasher, mailer, cfg)
	require.NoError(t, err)
	return svc, users, mailer
}

func userWithReset(token string, issuedAt time.Time) *auth.User {
	u := activeUser()
	u.ResetToken = &token
	u.ResetIssuedAt = &issuedAt
	return u
}

func TestService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()
	cfg := auth.Config{
		ResetBaseURL:     "https://example.org/reset",
		ResetMailSubject: "Password reset request",
		ResetMailBody:    "Please click on this link to reset your password:",
	}

	t.Run("stores token and mails link", func(t *testing.T) {
		svc, users, mailer := newResetService(t, cfg)
		user := activeUser()

		var storedToken string
		users.On("GetByName", ctx, "testuser").Return(user, nil)
		users.On("SetResetToken", ctx, "testuser", mock.MatchedBy(func(token string) bool {
			storedToken = token
			return len(token) == 40
		}), mock.AnythingOfType("time.Time")).Return(int64(1), nil)
		mailer.On("Send", ctx, "test@example.org", "Password reset request", mock.MatchedBy(func(body string) bool {
			return containsAll(body, "https://example.org/reset", "user_name=testuser", "verification_code="+storedToken)
		})).Return(nil)

		res := svc.RequestPasswordReset(ctx, "testuser")
		assert.True(t, res.OK())
		assert.Contains(t, res.Messages, "Password reset mail successfully sent!")
	})

	t.Run("empty name", func(t *testing.T) {
		svc, _, _ := newResetService(t, cfg)

		res := svc.RequestPasswordReset(ctx, "")
		assert.Contains(t, res.Errors, "Empty username")
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, users, _ := newResetService(t, cfg)

		users.On("GetByName", ctx, "unknown").Return(nil, auth.ErrNotFound)

		res := svc.RequestPasswordReset(ctx, "unknown")
		assert.Contains(t, res.Errors, "This username does not exist.")
	})

	t.Run("token write failure", func(t *testing.T) {
		svc, users, mailer := newResetService(t, cfg)
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		users.On("SetResetToken", ctx, "testuser", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(int64(0), errors.New("write failed"))

		res := svc.RequestPasswordReset(ctx, "testuser")
		assert.Contains(t, res.Errors, "Could not write token to database.")
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail failure keeps the stored token", func(t *testing.T) {
		svc, users, mailer := newResetService(t, cfg)
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		users.On("SetResetToken", ctx, "testuser", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
			Return(int64(1), nil)
		mailer.On("Send", ctx, "test@example.org", mock.AnythingOfType("string"), mock.AnythingOfType("string")).
			Return(errors.New("smtp unavailable"))

		res := svc.RequestPasswordReset(ctx, "testuser")
		assert.Contains(t, res.Errors, "Password reset mail NOT successfully sent!")
		// SetResetToken already succeeded; no compensating call exists on
		// the repository interface, so the token stays valid.
		users.AssertExpectations(t)
	})
}

func TestService_ValidateResetLink(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh token validates", func(t *testing.T) {
		svc, users, _ := newResetService(t, auth.Config{})
		issuedAt := time.Now().Add(-30 * time.Minute)
		user := userWithReset("deadbeef", issuedAt)

		users.On("GetByNameAndToken", ctx, "testuser", "deadbeef").Return(user, nil)

		res := svc.ValidateResetLink(ctx, "testuser", "deadbeef")
		assert.True(t, res.OK())
		assert.True(t, res.ResetLinkValid)
	})

	t.Run("empty parameters", func(t *testing.T) {
		svc, _, _ := newResetService(t, auth.Config{})

		res := svc.ValidateResetLink(ctx, "", "")
		assert.Contains(t, res.Errors, "Empty link parameter data.")
	})

	t.Run("no matching pair", func(t *testing.T) {
		svc, users, _ := newResetService(t, auth.Config{})

		users.On("GetByNameAndToken", ctx, "testuser", "wrongtoken").Return(nil, auth.ErrNotFound)

		res := svc.ValidateResetLink(ctx, "testuser", "wrongtoken")
		assert.False(t, res.ResetLinkValid)
		assert.Contains(t, res.Errors, "Your reset link is invalid. Please request a new one.")
	})

	t.Run("expired token", func(t *testing.T) {
		svc, users, _ := newResetService(t, auth.Config{})
		issuedAt := time.Now().Add(-2 * time.Hour)
		user := userWithReset("deadbeef", issuedAt)

		users.On("GetByNameAndToken", ctx, "testuser", "deadbeef").Return(user, nil)

		res := svc.ValidateResetLink(ctx, "testuser", "deadbeef")
		assert.False(t, res.ResetLinkValid)
		assert.Contains(t, res.Errors, "Your reset link has expired. Please use the reset link within one hour.")
	})

	t.Run("custom TTL is honored", func(t *testing.T) {
		svc, users, _ := newResetService(t, auth.Config{ResetTokenTTL: 10 * time.Minute})
		issuedAt := time.Now().Add(-30 * time.Minute)
		user := userWithReset("deadbeef", issuedAt)

		users.On("GetByNameAndToken", ctx, "testuser", "deadbeef").Return(user, nil)

		res := svc.ValidateResetLink(ctx, "testuser", "deadbeef")
		assert.False(t, res.ResetLinkValid)
	})
}

func TestService_CompleteReset(t *testing.T) {
	ctx := context.Background()

	t.Run("sets new password and consumes token", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, mocks.NewMockSessionStore(t), hasher, nil, auth.Config{HashCost: 10})
		require.NoError(t, err)

		hasher.On("Hash", "newpassword", 10).Return("$2a$10$newhash", nil)
		users.On("ClearResetTokenAndSetPassword", ctx, "testuser", "deadbeef", "$2a$10$newhash").
			Return(int64(1), nil)

		res := svc.CompleteReset(ctx, "testuser", "deadbeef", "newpassword", "newpassword")
		assert.True(t, res.OK())
		assert.True(t, res.ResetCompleted)
		assert.Contains(t, res.Messages, "Password successfully changed!")
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _ := newResetService(t, auth.Config{})

		res := svc.CompleteReset(ctx, "testuser", "", "newpassword", "newpassword")
		assert.Contains(t, res.Errors, "Empty link parameter data.")
	})

	t.Run("mismatched passwords", func(t *testing.T) {
		svc, _, _ := newResetService(t, auth.Config{})

		res := svc.CompleteReset(ctx, "testuser", "deadbeef", "newpassword", "different")
		assert.Contains(t, res.Errors, "Passwords dont match, please request a new password reset.")
	})

	t.Run("too short", func(t *testing.T) {
		svc, _, _ := newResetService(t, auth.Config{})

		res := svc.CompleteReset(ctx, "testuser", "deadbeef", "short", "short")
		assert.Contains(t, res.Errors, "Password too short, please request a new password reset.")
	})

	t.Run("consumed token fails the whole operation", func(t *testing.T) {
		users := mocks.NewMockUserRepository(t)
		hasher := mocks.NewMockPasswordHasher(t)
		svc, err := auth.NewService(users, mocks.NewMockSessionStore(t), hasher, nil, auth.Config{HashCost: 10})
		require.NoError(t, err)

		hasher.On("Hash", "newpassword", 10).Return("$2a$10$newhash", nil)
		users.On("ClearResetTokenAndSetPassword", ctx, "testuser", "deadbeef", "$2a$10$newhash").
			Return(int64(0), nil)

		res := svc.CompleteReset(ctx, "testuser", "deadbeef", "newpassword", "newpassword")
		assert.False(t, res.ResetCompleted)
		assert.Contains(t, res.Errors, "Sorry, your password changing failed.")
	})
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
