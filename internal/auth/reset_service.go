// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/credgate/credgate/pkg/errutil"
)

// RequestPasswordReset stores a fresh reset token for the named user and
// mails a link embedding the name and token. A mail dispatch failure is
// reported but does not roll back the stored token: the token stays usable
// if the link is otherwise recovered.
func (s *Service) RequestPasswordReset(ctx context.Context, name string) *Result {
	res := &Result{}

	if name == "" {
		s.metrics.RecordReset("request", "invalid_input")
		return res.fail("Empty username")
	}

	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.RecordReset("request", "unknown_user")
			return res.fail("This username does not exist.")
		}
		errutil.LogError(s.logger, "reset request lookup failed", err)
		s.metrics.RecordReset("request", "store_error")
		return res.fail("Database connection problem.")
	}

	token, err := GenerateResetToken()
	if err != nil {
		errutil.LogError(s.logger, "reset token generation failed", err)
		s.metrics.RecordReset("request", "token_error")
		return res.fail("Could not create a reset token.")
	}

	affected, err := s.users.SetResetToken(ctx, user.Name, token, time.Now())
	if err != nil || affected != 1 {
		if err != nil {
			errutil.LogError(s.logger, "reset token write failed", err)
		}
		s.metrics.RecordReset("request", "store_error")
		return res.fail("Could not write token to database.")
	}

	s.metrics.RecordReset("request", "success")
	s.sendResetMail(ctx, res, user, token)
	return res
}

func (s *Service) sendResetMail(ctx context.Context, res *Result, user *User, token string) {
	if s.mailer == nil {
		s.metrics.RecordMailDispatch("skipped")
		res.fail("Password reset mail NOT successfully sent!")
		return
	}

	link := ResetLink(s.cfg.ResetBaseURL, user.Name, token)
	body := s.cfg.ResetMailBody + ` <a href="` + link + `">` + link + `</a>`

	if err := s.mailer.Send(ctx, user.Email, s.cfg.ResetMailSubject, body); err != nil {
		errutil.LogError(s.logger, "reset mail dispatch failed", err)
		s.metrics.RecordMailDispatch("failure")
		res.fail("Password reset mail NOT successfully sent!")
		return
	}

	s.metrics.RecordMailDispatch("success")
	res.info("Password reset mail successfully sent!")
}

// ValidateResetLink checks a (name, token) pair from a reset link. A match
// inside the token TTL marks the result ResetLinkValid so the caller can
// show the new-password form.
func (s *Service) ValidateResetLink(ctx context.Context, name, token string) *Result {
	res := &Result{}

	if name == "" || token == "" {
		s.metrics.RecordReset("validate", "invalid_input")
		return res.fail("Empty link parameter data.")
	}

	user, err := s.users.GetByNameAndToken(ctx, name, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.RecordReset("validate", "invalid_link")
			return res.fail("Your reset link is invalid. Please request a new one.")
		}
		errutil.LogError(s.logger, "reset link lookup failed", err)
		s.metrics.RecordReset("validate", "store_error")
		return res.fail("Database connection problem.")
	}

	if user.ResetIssuedAt == nil || time.Since(*user.ResetIssuedAt) > s.cfg.resetTTL() {
		s.metrics.RecordReset("validate", "expired")
		return res.fail("Your reset link has expired. Please use the reset link within one hour.")
	}

	s.metrics.RecordReset("validate", "success")
	res.ResetLinkValid = true
	return res
}

// CompleteReset sets a new password for the (name, token) pair. The store
// write atomically replaces the hash and nulls both reset columns; zero
// affected rows means the token was consumed or expired mid-request and the
// whole operation fails.
func (s *Service) CompleteReset(ctx context.Context, name, token, newPassword, repeatPassword string) *Result {
	res := &Result{}

	if name == "" || token == "" || newPassword == "" || repeatPassword == "" {
		s.metrics.RecordReset("complete", "invalid_input")
		return res.fail("Empty link parameter data.")
	}
	if newPassword != repeatPassword {
		s.metrics.RecordReset("complete", "invalid_input")
		return res.fail("Passwords dont match, please request a new password reset.")
	}
	if len(newPassword) < MinPasswordLength {
		s.metrics.RecordReset("complete", "invalid_input")
		return res.fail("Password too short, please request a new password reset.")
	}

	newHash, err := s.hasher.Hash(newPassword, s.cfg.HashCost)
	if err != nil {
		errutil.LogError(s.logger, "reset password hashing failed", err)
		s.metrics.RecordReset("complete", "hash_error")
		return res.fail("Sorry, your password changing failed.")
	}

	affected, err := s.users.ClearResetTokenAndSetPassword(ctx, name, token, newHash)
	if err != nil || affected != 1 {
		if err != nil {
			errutil.LogError(s.logger, "reset completion failed", err)
		}
		s.metrics.RecordReset("complete", "failure")
		return res.fail("Sorry, your password changing failed.")
	}

	s.metrics.RecordReset("complete", "success")
	res.ResetCompleted = true
	return res.info("Password successfully changed!")
}
