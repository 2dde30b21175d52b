// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/auth"
	"github.com/credgate/credgate/internal/auth/postgres"
	"github.com/credgate/credgate/internal/config"
	"github.com/credgate/credgate/internal/logging"
	"github.com/credgate/credgate/internal/mail"
	"github.com/credgate/credgate/internal/observability"
	"github.com/credgate/credgate/internal/store"
	"github.com/credgate/credgate/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the credential service",
		Long: `Start the credential service: connect to PostgreSQL, wire the auth
service, and expose metrics and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, autoMigrate)
		},
	}

	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations on startup")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("http.metrics_addr", "", "metrics/health HTTP address")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "", "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, autoMigrate bool) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("credgate", version, cfg.Log.Format, cfg.Log.Level)
	logger := slog.Default()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if autoMigrate {
		migrator, err := store.NewMigrator(cfg.Database.URL)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			_ = migrator.Close() //nolint:errcheck // migration error takes precedence
			return err
		}
		if err := migrator.Close(); err != nil {
			errutil.LogError(logger, "migrator close failed", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	users := postgres.NewUserRepository(pool)
	sessions := auth.NewMemorySessionStore()
	hasher := auth.NewBcryptHasher()

	var mailer auth.Mailer
	if cfg.Mail.Host != "" {
		smtpMailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.Mail.Host,
			Port: cfg.Mail.Port,
			User: cfg.Mail.User,
			Pass: cfg.Mail.Pass,
			From: cfg.Mail.From,
		})
		if err != nil {
			return err
		}
		mailer = smtpMailer
	} else {
		logger.Warn("no SMTP relay configured, mail goes to the log")
		mailer = mail.NewLogMailer(logger)
	}

	svc, err := auth.NewServiceWithLogger(users, sessions, hasher, mailer, cfg.AuthServiceConfig(), logger)
	if err != nil {
		return err
	}

	// Ready once the database connection is verified and the service wired.
	obsServer := observability.NewServer(cfg.HTTP.MetricsAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrChan, err := obsServer.Start()
	if err != nil {
		return err
	}
	svc.SetMetrics(obsServer.Metrics())

	go func() {
		if serveErr, ok := <-obsErrChan; ok && serveErr != nil {
			errutil.LogError(logger, "observability server failed", serveErr)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("credgate started")
	logger.Info("service ready",
		"metrics_addr", obsServer.Addr(),
		"sessions", sessions.Len(),
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := obsServer.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "error stopping observability server", err)
	}

	logger.Info("shutdown complete")
	return nil
}
