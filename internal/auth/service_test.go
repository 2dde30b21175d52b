// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/mocks"
)

func TestNewService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		users       auth.UserRepository
		sessions    auth.SessionStore
		hasher      auth.PasswordHasher
		expectError string
	}{
		{
			name:        "nil users repository",
			users:       nil,
			sessions:    mocks.NewMockSessionStore(t),
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "users repository is required",
		},
		{
			name:        "nil session store",
			users:       mocks.NewMockUserRepository(t),
			sessions:    nil,
			hasher:      mocks.NewMockPasswordHasher(t),
			expectError: "sessions store is required",
		},
		{
			name:        "nil password hasher",
			users:       mocks.NewMockUserRepository(t),
			sessions:    mocks.NewMockSessionStore(t),
			hasher:      nil,
			expectError: "password hasher is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.users, tt.sessions, tt.hasher, nil, auth.Config{})
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestNewServiceWithLogger_NilLogger(t *testing.T) {
	users := mocks.NewMockUserRepository(t)
	sessions := mocks.NewMockSessionStore(t)
	hasher := mocks.NewMockPasswordHasher(t)

	svc, err := auth.NewServiceWithLogger(users, sessions, hasher, nil, auth.Config{}, nil)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Contains(t, err.Error(), "logger")
}

func newTestService(t *testing.T, cfg auth.Config) (*auth.Service, *mocks.MockUserRepository, *mocks.MockSessionStore, *mocks.MockPasswordHasher) {
	t.Helper()
	users := mocks.NewMockUserRepository(t)
	sessions := mocks.NewMockSessionStore(t)
	hasher := mocks.NewMockPasswordHasher(t)
	svc, err := auth.NewService(users, sessions, hasher, nil, cfg)
	require.NoError(t, err)
	return svc, users, sessions, hasher
}

func activeUser() *auth.User {
	return &auth.User{
		ID:           42,
		Name:         "testuser",
		Email:        "test@example.org",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Active:       true,
	}
}

func TestService_LoginWithCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login establishes session", func(t *testing.T) {
		svc, users, sessions, hasher := newTestService(t, auth.Config{})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		sessions.On("Establish", ctx, "sid-1", mock.MatchedBy(func(s auth.Session) bool {
			return s.LoggedIn && s.UserID == user.ID && s.UserName == "testuser"
		})).Return(nil)

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.True(t, res.OK())
		assert.True(t, res.Authenticated)
		assert.Equal(t, "testuser", res.Session.UserName)
		assert.Equal(t, "test@example.org", res.Session.UserEmail)
	})

	t.Run("empty name and password accumulate both errors", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, auth.Config{})

		res := svc.LoginWithCredentials(ctx, "sid-1", "", "")
		assert.False(t, res.Authenticated)
		require.Len(t, res.Errors, 2)
		assert.Equal(t, "Username field was empty.", res.Errors[0])
		assert.Equal(t, "Password field was empty.", res.Errors[1])
	})

	t.Run("empty password only", func(t *testing.T) {
		svc, _, _, _ := newTestService(t, auth.Config{})

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "")
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "Password field was empty.", res.Errors[0])
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, users, _, _ := newTestService(t, auth.Config{})

		users.On("GetByName", ctx, "unknown").Return(nil, auth.ErrNotFound)

		res := svc.LoginWithCredentials(ctx, "sid-1", "unknown", "password123")
		assert.False(t, res.Authenticated)
		assert.Contains(t, res.Errors, "This user does not exist.")
	})

	t.Run("store failure reads as connection problem", func(t *testing.T) {
		svc, users, _, _ := newTestService(t, auth.Config{})

		users.On("GetByName", ctx, "testuser").Return(nil, errors.New("dial tcp: refused"))

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.Contains(t, res.Errors, "Database connection problem.")
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, _, hasher := newTestService(t, auth.Config{})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "wrongpassword", user.PasswordHash).Return(false)

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "wrongpassword")
		assert.False(t, res.Authenticated)
		assert.Contains(t, res.Errors, "Wrong password. Try again.")
	})

	t.Run("inactive account after correct password", func(t *testing.T) {
		svc, users, _, hasher := newTestService(t, auth.Config{})
		user := activeUser()
		user.Active = false

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.False(t, res.Authenticated)
		assert.Contains(t, res.Errors, "Your account is not activated yet. Please click on the confirm link in the mail.")
	})

	t.Run("session establish failure fails the login", func(t *testing.T) {
		svc, users, sessions, hasher := newTestService(t, auth.Config{})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		sessions.On("Establish", ctx, "sid-1", mock.AnythingOfType("auth.Session")).
			Return(errors.New("store full"))

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.False(t, res.Authenticated)
		assert.Contains(t, res.Errors, "Session could not be established.")
	})

	t.Run("stale hash is upgraded on login", func(t *testing.T) {
		svc, users, sessions, hasher := newTestService(t, auth.Config{HashCost: 12})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		sessions.On("Establish", ctx, "sid-1", mock.AnythingOfType("auth.Session")).Return(nil)
		hasher.On("NeedsRehash", user.PasswordHash, 12).Return(true)
		hasher.On("Hash", "password123", 12).Return("$2a$12$newhash", nil)
		users.On("UpdatePasswordHash", ctx, user.ID, "$2a$12$newhash").Return(int64(1), nil)

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.True(t, res.Authenticated)
		assert.Contains(t, res.Messages, "Your password hash has been upgraded.")
	})

	t.Run("rehash write failure does not abort the login", func(t *testing.T) {
		svc, users, sessions, hasher := newTestService(t, auth.Config{HashCost: 12})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		sessions.On("Establish", ctx, "sid-1", mock.AnythingOfType("auth.Session")).Return(nil)
		hasher.On("NeedsRehash", user.PasswordHash, 12).Return(true)
		hasher.On("Hash", "password123", 12).Return("$2a$12$newhash", nil)
		users.On("UpdatePasswordHash", ctx, user.ID, "$2a$12$newhash").
			Return(int64(0), errors.New("write failed"))

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.True(t, res.Authenticated)
		assert.True(t, res.OK())
		assert.Contains(t, res.Messages, "Your password hash could not be upgraded.")
	})

	t.Run("no rehash attempted when cost unset", func(t *testing.T) {
		svc, users, sessions, hasher := newTestService(t, auth.Config{})
		user := activeUser()

		users.On("GetByName", ctx, "testuser").Return(user, nil)
		hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		sessions.On("Establish", ctx, "sid-1", mock.AnythingOfType("auth.Session")).Return(nil)

		res := svc.LoginWithCredentials(ctx, "sid-1", "testuser", "password123")
		assert.True(t, res.Authenticated)
		hasher.AssertNotCalled(t, "NeedsRehash", mock.Anything, mock.Anything)
	})
}

func TestService_LoginWithSession(t *testing.T) {
	ctx := context.Background()

	t.Run("logged-in session is trusted without a store read", func(t *testing.T) {
		svc, users, sessions, _ := newTestService(t, auth.Config{})
		sess := auth.Session{UserID: 42, UserName: "testuser", UserEmail: "test@example.org", LoggedIn: true}

		sessions.On("Load", ctx, "sid-1").Return(sess, nil)

		res := svc.LoginWithSession(ctx, "sid-1")
		assert.True(t, res.Authenticated)
		assert.Equal(t, sess, res.Session)
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("anonymous session is not an error", func(t *testing.T) {
		svc, _, sessions, _ := newTestService(t, auth.Config{})

		sessions.On("Load", ctx, "sid-1").Return(auth.Session{}, nil)

		res := svc.LoginWithSession(ctx, "sid-1")
		assert.True(t, res.OK())
		assert.False(t, res.Authenticated)
	})

	t.Run("revalidation tears down a deleted account", func(t *testing.T) {
		svc, users, sessions, _ := newTestService(t, auth.Config{RevalidateSessions: true})
		sess := auth.Session{UserID: 42, UserName: "testuser", LoggedIn: true}

		sessions.On("Load", ctx, "sid-1").Return(sess, nil)
		users.On("GetByID", ctx, int64(42)).Return(nil, auth.ErrNotFound)
		sessions.On("Destroy", ctx, "sid-1").Return(nil)

		res := svc.LoginWithSession(ctx, "sid-1")
		assert.False(t, res.Authenticated)
		assert.Contains(t, res.Errors, "This user does not exist.")
	})

	t.Run("revalidation tears down a deactivated account", func(t *testing.T) {
		svc, users, sessions, _ := newTestService(t, auth.Config{RevalidateSessions: true})
		sess := auth.Session{UserID: 42, UserName: "testuser", LoggedIn: true}
		user := activeUser()
		user.Active = false

		sessions.On("Load", ctx, "sid-1").Return(sess, nil)
		users.On("GetByID", ctx, int64(42)).Return(user, nil)
		sessions.On("Destroy", ctx, "sid-1").Return(nil)

		res := svc.LoginWithSession(ctx, "sid-1")
		assert.False(t, res.Authenticated)
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("destroys session and confirms", func(t *testing.T) {
		svc, _, sessions, _ := newTestService(t, auth.Config{})

		sessions.On("Destroy", ctx, "sid-1").Return(nil)

		res := svc.Logout(ctx, "sid-1")
		assert.True(t, res.OK())
		assert.True(t, res.Session.Anonymous())
		assert.Contains(t, res.Messages, "You have been logged out.")
	})

	t.Run("destroy failure is reported", func(t *testing.T) {
		svc, _, sessions, _ := newTestService(t, auth.Config{})

		sessions.On("Destroy", ctx, "sid-1").Return(errors.New("store down"))

		res := svc.Logout(ctx, "sid-1")
		assert.Contains(t, res.Errors, "Logout failed.")
	})
}
