// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

// Package auth implements the credential-management core.
//
// # Domain Types
//
// User is the persistent identity record; Session is the ephemeral trust
// assertion tied to a client session ID. Reset tokens are plain 40-hex-char
// values stored next to the user row together with their issue timestamp;
// both columns are set and cleared together.
//
// # Service
//
// Service is the login state machine. Every public operation returns a
// *Result that accumulates human-readable errors and informational messages
// for the caller to render; nothing in this package terminates the process.
// Callers select exactly one intent per request, either by invoking the
// operation directly or through Service.Do with a Request.
//
// Persistence is abstracted behind UserRepository (see postgres/ for the
// pgx implementation), session state behind SessionStore, mail dispatch
// behind Mailer, and hashing behind PasswordHasher.
package auth
