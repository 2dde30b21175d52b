// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package auth

import "context"

// Mailer dispatches notification mail. Implementations live in
// internal/mail; the service treats dispatch failure as reportable but
// never rolls back state already committed to the store.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MetricsRecorder receives counters from the service. The concrete
// Prometheus implementation lives in internal/observability.
type MetricsRecorder interface {
	RecordLogin(result string)
	RecordReset(stage, result string)
	RecordEdit(field, result string)
	RecordMailDispatch(result string)
}

// nopMetrics is used when no recorder is configured.
type nopMetrics struct{}

func (nopMetrics) RecordLogin(string)        {}
func (nopMetrics) RecordReset(string, string) {}
func (nopMetrics) RecordEdit(string, string)  {}
func (nopMetrics) RecordMailDispatch(string)  {}
