// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import "context"

// Intent selects exactly one Service operation for a request. Callers map
// each inbound form submission or link to one intent; a request never
// triggers combined actions.
type Intent int

const (
	// IntentSession reattaches an existing session without credentials.
	IntentSession Intent = iota
	// IntentLogin authenticates a name/password pair.
	IntentLogin
	// IntentLogout destroys the session.
	IntentLogout
	// IntentEditName changes the username.
	IntentEditName
	// IntentEditEmail changes the email address.
	IntentEditEmail
	// IntentEditPassword changes the password.
	IntentEditPassword
	// IntentRequestReset mails a password-reset link.
	IntentRequestReset
	// IntentValidateResetLink checks a reset link's name/token pair.
	IntentValidateResetLink
	// IntentCompleteReset sets a new password via a reset token.
	IntentCompleteReset
)

// String returns the intent name for logging.
func (i Intent) String() string {
	switch i {
	case IntentSession:
		return "session"
	case IntentLogin:
		return "login"
	case IntentLogout:
		return "logout"
	case IntentEditName:
		return "edit_name"
	case IntentEditEmail:
		return "edit_email"
	case IntentEditPassword:
		return "edit_password"
	case IntentRequestReset:
		return "request_reset"
	case IntentValidateResetLink:
		return "validate_reset_link"
	case IntentCompleteReset:
		return "complete_reset"
	default:
		return "unknown"
	}
}

// Request carries one intent and the fields it consumes. Unused fields are
// ignored by the selected operation.
type Request struct {
	Intent Intent

	UserName string
	Password string

	NewName  string
	NewEmail string

	OldPassword    string
	NewPassword    string
	RepeatPassword string

	ResetToken string
}

// Do dispatches a Request to the operation its intent names.
func (s *Service) Do(ctx context.Context, sid string, req Request) *Result {
	switch req.Intent {
	case IntentSession:
		return s.LoginWithSession(ctx, sid)
	case IntentLogin:
		return s.LoginWithCredentials(ctx, sid, req.UserName, req.Password)
	case IntentLogout:
		return s.Logout(ctx, sid)
	case IntentEditName:
		return s.EditUserName(ctx, sid, req.NewName)
	case IntentEditEmail:
		return s.EditUserEmail(ctx, sid, req.NewEmail)
	case IntentEditPassword:
		return s.EditUserPassword(ctx, sid, req.OldPassword, req.NewPassword, req.RepeatPassword)
	case IntentRequestReset:
		return s.RequestPasswordReset(ctx, req.UserName)
	case IntentValidateResetLink:
		return s.ValidateResetLink(ctx, req.UserName, req.ResetToken)
	case IntentCompleteReset:
		return s.CompleteReset(ctx, req.UserName, req.ResetToken, req.NewPassword, req.RepeatPassword)
	default:
		res := &Result{}
		return res.fail("Unknown action.")
	}
}
