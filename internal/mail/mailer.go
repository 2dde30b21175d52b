// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

// Package mail delivers outbound mail for the auth flows.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/samber/oops"
)

// SMTPConfig carries the connection settings for an SMTP relay.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Addr returns the host:port dial address.
func (c SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SMTPMailer sends HTML mail through an SMTP relay with plain auth.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer. Host and From are required.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("MAIL_CONFIG_INVALID").Errorf("smtp from address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 25
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send delivers one HTML message. The context deadline is not honored
// mid-transaction; net/smtp has no context support, so cancellation is
// checked only before dialing.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("to", to).
			Wrap(err)
	}

	msg := buildMessage(m.cfg.From, to, subject, htmlBody)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, msg); err != nil {
		return oops.Code("MAIL_SEND_FAILED").
			With("to", to).
			With("relay", m.cfg.Addr()).
			Wrap(err)
	}
	return nil
}

// buildMessage assembles an RFC 5322 message with HTML content headers.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer writes mail to the log instead of a relay. Intended for
// development setups without SMTP access.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger falls back to the default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message instead of delivering it.
func (m *LogMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.logger.Info("mail dispatch (log only)",
		"to", to,
		"subject", subject,
		"body", htmlBody,
	)
	return nil
}
