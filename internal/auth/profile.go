// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/credgate/credgate/pkg/errutil"
)

// EditUserName changes the logged-in user's name. The session copy of the
// name is updated only after the store write succeeds; a failed write
// leaves both the row and the session untouched.
func (s *Service) EditUserName(ctx context.Context, sid, newName string) *Result {
	res := &Result{}

	sess, ok := s.requireSession(ctx, sid, res)
	if !ok {
		return res
	}

	if newName != "" && newName == sess.UserName {
		s.metrics.RecordEdit("name", "no_change")
		return res.fail("Sorry, that username is the same as your current one. Please choose another one.")
	}
	if err := ValidateUserName(newName); err != nil {
		s.metrics.RecordEdit("name", "invalid")
		return res.fail("Sorry, your chosen username does not fit into the naming pattern.")
	}

	exists, err := s.users.NameExists(ctx, newName)
	if err != nil {
		errutil.LogError(s.logger, "username uniqueness check failed", err)
		s.metrics.RecordEdit("name", "store_error")
		return res.fail("Database connection problem.")
	}
	if exists {
		s.metrics.RecordEdit("name", "taken")
		return res.fail("Sorry, that username is already taken. Please choose another one.")
	}

	affected, err := s.users.UpdateName(ctx, sess.UserID, newName)
	if err != nil || affected != 1 {
		if errors.Is(err, ErrNameTaken) {
			// Lost the race against a concurrent rename; the unique
			// constraint is authoritative.
			s.metrics.RecordEdit("name", "taken")
			return res.fail("Sorry, that username is already taken. Please choose another one.")
		}
		if err != nil {
			errutil.LogError(s.logger, "username update failed", err)
		}
		s.metrics.RecordEdit("name", "store_error")
		return res.fail("Sorry, your chosen username renaming failed.")
	}

	sess.UserName = newName
	if err := s.sessions.Establish(ctx, sid, sess); err != nil {
		errutil.LogError(s.logger, "session update failed", err)
		s.metrics.RecordEdit("name", "session_error")
		return res.fail("Sorry, your chosen username renaming failed.")
	}

	res.Session = sess
	s.metrics.RecordEdit("name", "success")
	return res.info("Your username has been changed successfully. New username is " + newName + ".")
}

// EditUserEmail changes the logged-in user's email address. Uniqueness is
// enforced by the store's constraint and surfaced on conflict.
func (s *Service) EditUserEmail(ctx context.Context, sid, newEmail string) *Result {
	res := &Result{}

	sess, ok := s.requireSession(ctx, sid, res)
	if !ok {
		return res
	}

	newEmail = strings.TrimSpace(newEmail)
	if newEmail != "" && newEmail == sess.UserEmail {
		s.metrics.RecordEdit("email", "no_change")
		return res.fail("Sorry, that email address is the same as your current one. Please choose another one.")
	}
	if err := ValidateEmail(newEmail); err != nil {
		s.metrics.RecordEdit("email", "invalid")
		return res.fail("Sorry, your chosen email does not fit into the naming pattern.")
	}

	affected, err := s.users.UpdateEmail(ctx, sess.UserID, newEmail)
	if err != nil || affected != 1 {
		if errors.Is(err, ErrEmailTaken) {
			s.metrics.RecordEdit("email", "taken")
			return res.fail("Sorry, that email address is already taken. Please choose another one.")
		}
		if err != nil {
			errutil.LogError(s.logger, "email update failed", err)
		}
		s.metrics.RecordEdit("email", "store_error")
		return res.fail("Sorry, your email changing failed.")
	}

	sess.UserEmail = newEmail
	if err := s.sessions.Establish(ctx, sid, sess); err != nil {
		errutil.LogError(s.logger, "session update failed", err)
		s.metrics.RecordEdit("email", "session_error")
		return res.fail("Sorry, your email changing failed.")
	}

	res.Session = sess
	s.metrics.RecordEdit("email", "success")
	return res.info("Your email address has been changed successfully. New email address is " + newEmail + ".")
}

// EditUserPassword changes the logged-in user's password after verifying
// the old one against the stored hash.
func (s *Service) EditUserPassword(ctx context.Context, sid, oldPassword, newPassword, repeatPassword string) *Result {
	res := &Result{}

	sess, ok := s.requireSession(ctx, sid, res)
	if !ok {
		return res
	}

	if oldPassword == "" || newPassword == "" || repeatPassword == "" {
		s.metrics.RecordEdit("password", "invalid")
		return res.fail("Empty Password")
	}
	if newPassword != repeatPassword {
		s.metrics.RecordEdit("password", "invalid")
		return res.fail("Password and password repeat are not the same")
	}
	if len(newPassword) < MinPasswordLength {
		s.metrics.RecordEdit("password", "invalid")
		return res.fail("Password has a minimum length of 6 characters")
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.RecordEdit("password", "unknown_user")
			return res.fail("This user does not exist.")
		}
		errutil.LogError(s.logger, "password change lookup failed", err)
		s.metrics.RecordEdit("password", "store_error")
		return res.fail("Database connection problem.")
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		s.metrics.RecordEdit("password", "wrong_old")
		return res.fail("Your OLD password was wrong.")
	}

	newHash, err := s.hasher.Hash(newPassword, s.cfg.HashCost)
	if err != nil {
		errutil.LogError(s.logger, "password hashing failed", err)
		s.metrics.RecordEdit("password", "hash_error")
		return res.fail("Sorry, your password changing failed.")
	}

	affected, err := s.users.UpdatePasswordHash(ctx, user.ID, newHash)
	if err != nil || affected != 1 {
		if err != nil {
			errutil.LogError(s.logger, "password update failed", err)
		}
		s.metrics.RecordEdit("password", "store_error")
		return res.fail("Sorry, your password changing failed.")
	}

	s.metrics.RecordEdit("password", "success")
	return res.info("Password successfully changed!")
}
