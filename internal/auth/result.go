// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

// Result is returned by every Service operation. Errors and Messages
// accumulate over the lifetime of one request and are never cleared by the
// service, so a view can render multiple validation failures at once.
type Result struct {
	// Errors holds human-readable failure messages.
	Errors []string

	// Messages holds informational messages (logout confirmation, rehash
	// notices, mail dispatch status).
	Messages []string

	// Authenticated is true when the request ended with a logged-in session.
	Authenticated bool

	// ResetLinkValid is true after a successful ValidateResetLink.
	ResetLinkValid bool

	// ResetCompleted is true after a successful CompleteReset.
	ResetCompleted bool

	// Session is the session state after the operation.
	Session Session
}

// OK returns true if no errors accumulated.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(msg string) *Result {
	r.Errors = append(r.Errors, msg)
	return r
}

func (r *Result) info(msg string) *Result {
	r.Messages = append(r.Messages, msg)
	return r
}
