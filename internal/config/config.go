// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

// Package config loads layered configuration: defaults, then an optional
// YAML file, then command-line flags. Later layers win.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/credgate/credgate/internal/auth"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Mail     MailConfig     `koanf:"mail"`
	HTTP     HTTPConfig     `koanf:"http"`
	Log      LogConfig      `koanf:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// AuthConfig holds credential policy settings.
type AuthConfig struct {
	HashCost           int           `koanf:"hash_cost"`
	ResetTokenTTL      time.Duration `koanf:"reset_token_ttl"`
	ResetBaseURL       string        `koanf:"reset_base_url"`
	ResetMailSubject   string        `koanf:"reset_mail_subject"`
	ResetMailBody      string        `koanf:"reset_mail_body"`
	RevalidateSessions bool          `koanf:"revalidate_sessions"`
}

// MailConfig holds SMTP relay settings. An empty host selects the
// log-only mailer.
type MailConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	From string `koanf:"from"`
}

// HTTPConfig holds listen addresses.
type HTTPConfig struct {
	MetricsAddr string `koanf:"metrics_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaults is the base configuration layer.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"database.url":             "postgres://localhost:5432/credgate?sslmode=disable",
		"auth.hash_cost":           auth.DefaultHashCost,
		"auth.reset_token_ttl":     auth.ResetTokenExpiry,
		"auth.reset_base_url":      "http://localhost:8080/reset",
		"auth.reset_mail_subject":  "Password reset request",
		"auth.reset_mail_body":     "Please click on this link to get a new password for your account:",
		"auth.revalidate_sessions": false,
		"mail.port":                25,
		"http.metrics_addr":        ":9091",
		"log.level":                "info",
		"log.format":               "text",
	}
}

// Load resolves configuration from defaults, the given YAML file (optional),
// and the given flag set (optional). An empty path skips the file layer; a
// named but missing file is an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "defaults").Wrap(err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, oops.Code("CONFIG_FILE_MISSING").With("path", path).Wrap(err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "file").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints the layers cannot express.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	if c.Auth.HashCost < 0 || c.Auth.HashCost > 31 {
		return oops.Code("CONFIG_INVALID").
			With("hash_cost", c.Auth.HashCost).
			Errorf("auth.hash_cost must be between 0 and 31")
	}
	if c.Auth.ResetTokenTTL < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("auth.reset_token_ttl must not be negative")
	}
	if c.Mail.Host != "" && c.Mail.From == "" {
		return oops.Code("CONFIG_INVALID").Errorf("mail.from is required when mail.host is set")
	}
	return nil
}

// AuthServiceConfig converts the loaded settings into the auth package's
// service configuration.
func (c *Config) AuthServiceConfig() auth.Config {
	return auth.Config{
		HashCost:           c.Auth.HashCost,
		ResetTokenTTL:      c.Auth.ResetTokenTTL,
		ResetBaseURL:       c.Auth.ResetBaseURL,
		ResetMailSubject:   c.Auth.ResetMailSubject,
		ResetMailBody:      c.Auth.ResetMailBody,
		RevalidateSessions: c.Auth.RevalidateSessions,
	}
}
