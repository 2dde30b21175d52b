// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import (
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is used when no cost factor is configured.
const DefaultHashCost = bcrypt.DefaultCost

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
//
// Hashes are self-describing: algorithm, cost, and salt are encoded in the
// hash string itself, so Verify and NeedsRehash work without external state.
type PasswordHasher interface {
	// Hash produces a salted hash of the password at the given cost.
	// A cost of 0 selects DefaultHashCost.
	Hash(password string, cost int) (string, error)

	// Verify checks if the password matches the hash in constant time.
	// A malformed hash verifies as false; Verify never fails.
	Verify(password, hash string) bool

	// NeedsRehash reports whether the stored hash was produced with a cost
	// different from the given one. Returns false for cost <= 0 (no policy
	// configured) and for malformed hashes.
	NeedsRehash(hash string, cost int) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct{}

// NewBcryptHasher creates a new BcryptHasher.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if cost <= 0 {
		cost = DefaultHashCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").
			With("cost", cost).
			Wrap(err)
	}
	return string(hash), nil
}

// Verify checks if the password matches the hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether the hash should be recomputed at the given cost.
func (h *BcryptHasher) NeedsRehash(hash string, cost int) bool {
	if cost <= 0 {
		return false
	}
	stored, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return stored != cost
}

// Compile-time interface check.
var _ PasswordHasher = (*BcryptHasher)(nil)
