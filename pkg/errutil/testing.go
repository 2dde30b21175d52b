// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package errutil

import (
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertErrorCode asserts that err is an oops error carrying the given code.
// Codes are compared by their string form.
func AssertErrorCode(tb testing.TB, err error, code string) {
	tb.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(tb, ok, "expected oops error, got %T", err)
	assert.Equal(tb, code, fmt.Sprintf("%v", oopsErr.Code()))
}

// AssertErrorContext asserts that err is an oops error whose context holds
// the given key/value pair.
func AssertErrorContext(tb testing.TB, err error, key string, value any) {
	tb.Helper()
	oopsErr, ok := oops.AsOops(err)
	require.True(tb, ok, "expected oops error, got %T", err)
	ctx := oopsErr.Context()
	require.Contains(tb, ctx, key, "context key %q missing", key)
	assert.Equal(tb, value, ctx[key])
}
