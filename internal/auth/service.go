// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/credgate/credgate/pkg/errutil"
)

// Config carries the policy knobs for the Service.
type Config struct {
	// HashCost is the bcrypt cost factor for new hashes. 0 means
	// DefaultHashCost and disables rehash-on-login.
	HashCost int

	// ResetTokenTTL is how long a mailed reset token stays valid.
	// 0 means ResetTokenExpiry.
	ResetTokenTTL time.Duration

	// ResetBaseURL is the page the reset link points at.
	ResetBaseURL string

	// ResetMailSubject and ResetMailBody make up the reset mail; the link
	// is appended to the body as an HTML anchor.
	ResetMailSubject string
	ResetMailBody    string

	// RevalidateSessions re-checks account existence and the active flag
	// when a prior session is presented. Off by default: a session, once
	// established, is trusted for its lifetime.
	RevalidateSessions bool
}

func (c Config) resetTTL() time.Duration {
	if c.ResetTokenTTL <= 0 {
		return ResetTokenExpiry
	}
	return c.ResetTokenTTL
}

// Service is the login state machine. It orchestrates credential
// verification, session trust, profile edits, and the password-reset flow.
// One Service instance processes one request to completion at a time from
// the caller's perspective; it keeps no per-request state of its own.
type Service struct {
	users    UserRepository
	sessions SessionStore
	hasher   PasswordHasher
	mailer   Mailer
	cfg      Config
	logger   *slog.Logger
	metrics  MetricsRecorder
}

// NewService creates a Service. users, sessions, and hasher are required;
// mailer may be nil when the reset flow is unused.
func NewService(users UserRepository, sessions SessionStore, hasher PasswordHasher, mailer Mailer, cfg Config) (*Service, error) {
	return NewServiceWithLogger(users, sessions, hasher, mailer, cfg, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger.
func NewServiceWithLogger(users UserRepository, sessions SessionStore, hasher PasswordHasher, mailer Mailer, cfg Config, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("sessions store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_CONFIG_INVALID").Errorf("logger is required")
	}
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger,
		metrics:  nopMetrics{},
	}, nil
}

// SetMetrics attaches a metrics recorder. Safe to call once during wiring.
func (s *Service) SetMetrics(m MetricsRecorder) {
	if m != nil {
		s.metrics = m
	}
}

// LoginWithSession reattaches a prior session. A session reporting
// logged-in is trusted without consulting the store unless
// RevalidateSessions is set, in which case a deleted or deactivated
// account tears the session down.
func (s *Service) LoginWithSession(ctx context.Context, sid string) *Result {
	res := &Result{}

	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		errutil.LogError(s.logger, "session load failed", err)
		return res.fail("Session could not be loaded.")
	}
	if sess.Anonymous() {
		res.Session = Session{}
		return res
	}

	if s.cfg.RevalidateSessions {
		user, err := s.users.GetByID(ctx, sess.UserID)
		switch {
		case errors.Is(err, ErrNotFound):
			_ = s.sessions.Destroy(ctx, sid) //nolint:errcheck // session is stale either way
			return res.fail("This user does not exist.")
		case err != nil:
			errutil.LogError(s.logger, "session revalidation failed", err)
			return res.fail("Database connection problem.")
		case !user.Active:
			_ = s.sessions.Destroy(ctx, sid) //nolint:errcheck // session is stale either way
			return res.fail("Your account is not activated yet. Please click on the confirm link in the mail.")
		}
	}

	res.Authenticated = true
	res.Session = sess
	return res
}

// LoginWithCredentials authenticates a submitted name/password pair and, on
// success, establishes the session for the given session ID.
func (s *Service) LoginWithCredentials(ctx context.Context, sid, name, password string) *Result {
	res := &Result{}

	if name == "" {
		res.fail("Username field was empty.")
	}
	if password == "" {
		res.fail("Password field was empty.")
	}
	if !res.OK() {
		s.metrics.RecordLogin("invalid_input")
		return res
	}

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.RecordLogin("unknown_user")
			return res.fail("This user does not exist.")
		}
		errutil.LogError(s.logger, "login lookup failed", err)
		s.metrics.RecordLogin("store_error")
		return res.fail("Database connection problem.")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordLogin("wrong_password")
		return res.fail("Wrong password. Try again.")
	}

	if !user.Active {
		s.metrics.RecordLogin("inactive")
		return res.fail("Your account is not activated yet. Please click on the confirm link in the mail.")
	}

	sess := Session{
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		LoggedIn:  true,
	}
	if err := s.sessions.Establish(ctx, sid, sess); err != nil {
		errutil.LogError(s.logger, "session establish failed", err)
		s.metrics.RecordLogin("session_error")
		return res.fail("Session could not be established.")
	}

	// Opportunistic hash upgrade. A write failure is reported but never
	// aborts a login that already verified.
	if s.cfg.HashCost > 0 && s.hasher.NeedsRehash(user.PasswordHash, s.cfg.HashCost) {
		s.rehash(ctx, res, user.ID, password)
	}

	s.metrics.RecordLogin("success")
	res.Authenticated = true
	res.Session = sess
	return res
}

func (s *Service) rehash(ctx context.Context, res *Result, userID int64, password string) {
	newHash, err := s.hasher.Hash(password, s.cfg.HashCost)
	if err != nil {
		errutil.LogError(s.logger, "rehash failed", err)
		res.info("Your password hash could not be upgraded.")
		return
	}
	affected, err := s.users.UpdatePasswordHash(ctx, userID, newHash)
	if err != nil || affected != 1 {
		if err != nil {
			errutil.LogError(s.logger, "rehash write failed", err)
		}
		res.info("Your password hash could not be upgraded.")
		return
	}
	res.info("Your password hash has been upgraded.")
}

// Logout destroys the session for the given session ID.
func (s *Service) Logout(ctx context.Context, sid string) *Result {
	res := &Result{}
	if err := s.sessions.Destroy(ctx, sid); err != nil {
		errutil.LogError(s.logger, "logout failed", err)
		return res.fail("Logout failed.")
	}
	res.Session = Session{}
	return res.info("You have been logged out.")
}

// requireSession loads the session and fails the result when it is not
// logged in. Returns the session and true on success.
func (s *Service) requireSession(ctx context.Context, sid string, res *Result) (Session, bool) {
	sess, err := s.sessions.Load(ctx, sid)
	if err != nil {
		errutil.LogError(s.logger, "session load failed", err)
		res.fail("Session could not be loaded.")
		return Session{}, false
	}
	if sess.Anonymous() {
		res.fail("You are not logged in.")
		return Session{}, false
	}
	res.Session = sess
	return sess, true
}
