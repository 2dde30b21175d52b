// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session is the server-side trust state for one client session ID.
// The zero value is the anonymous session.
type Session struct {
	UserID    int64
	UserName  string
	UserEmail string
	LoggedIn  bool
}

// Anonymous returns true if the session carries no authenticated user.
func (s Session) Anonymous() bool {
	return !s.LoggedIn
}

// NewSessionID generates an opaque identifier a client presents on each
// request to reattach to its session.
func NewSessionID() string {
	return ulid.Make().String()
}

// SessionStore holds per-client session state. Implementations mutate only
// the entry addressed by the given session ID; state is never shared across
// IDs.
type SessionStore interface {
	// Load returns the session for the given ID. An unknown ID yields the
	// anonymous session, not an error.
	Load(ctx context.Context, sid string) (Session, error)

	// Establish writes the session state for the given ID.
	Establish(ctx context.Context, sid string, sess Session) error

	// Destroy removes all session state for the given ID. Destroying an
	// unknown ID is not an error.
	Destroy(ctx context.Context, sid string) error
}

// MemorySessionStore implements SessionStore with a process-local map.
// Sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

// Load returns the session for the given ID.
func (m *MemorySessionStore) Load(_ context.Context, sid string) (Session, error) {
	if sid == "" {
		return Session{}, oops.Code("SESSION_ID_EMPTY").Errorf("session ID cannot be empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sid], nil
}

// Establish writes the session state for the given ID.
func (m *MemorySessionStore) Establish(_ context.Context, sid string, sess Session) error {
	if sid == "" {
		return oops.Code("SESSION_ID_EMPTY").Errorf("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sid] = sess
	return nil
}

// Destroy removes all session state for the given ID.
func (m *MemorySessionStore) Destroy(_ context.Context, sid string) error {
	if sid == "" {
		return oops.Code("SESSION_ID_EMPTY").Errorf("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
	return nil
}

// Len returns the number of live sessions. Used by readiness reporting.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Compile-time interface check.
var _ SessionStore = (*MemorySessionStore)(nil)
