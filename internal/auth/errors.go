// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrNameTaken is returned when a username collides with an existing row.
// Repositories map the store's unique-constraint violation to this error;
// the service never retries it.
var ErrNameTaken = errors.New("username already taken")

// ErrEmailTaken is returned when an email address collides with an existing row.
var ErrEmailTaken = errors.New("email already taken")
