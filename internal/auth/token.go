// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes  = 20        // 20 bytes = 40 hex chars, 160 bits of entropy
	ResetTokenExpiry = time.Hour // tokens are valid for one hour after issue
)

// GenerateResetToken creates an unguessable password-reset token.
// The plaintext token is mailed to the user and stored next to the user row
// together with its issue timestamp.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", ResetTokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// ResetLink builds the password-reset URL mailed to the user. Both the
// username and the token are query-encoded.
func ResetLink(baseURL, userName, token string) string {
	return baseURL +
		"?user_name=" + url.QueryEscape(userName) +
		"&verification_code=" + url.QueryEscape(token)
}
