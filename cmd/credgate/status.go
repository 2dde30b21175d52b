// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CredGate Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/credgate/credgate/internal/config"
	"github.com/credgate/credgate/internal/store"
)

// DatabaseStatus holds the reachability and schema state of the database.
type DatabaseStatus struct {
	Reachable        bool   `json:"reachable"`
	MigrationVersion uint   `json:"migration_version"`
	MigrationName    string `json:"migration_name,omitempty"`
	Dirty            bool   `json:"dirty"`
	Error            string `json:"error,omitempty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database and schema status",
		Long:  `Check database reachability and report the current migration version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	status := queryDatabaseStatus(cfg.Database.URL)

	if jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatus(status))
	return nil
}

// queryDatabaseStatus opens a migrator against the configured database and
// reads the schema version. Connection failures are reported in the status,
// not returned as errors, so the command always produces output.
func queryDatabaseStatus(databaseURL string) DatabaseStatus {
	var status DatabaseStatus

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	defer func() { _ = migrator.Close() }() //nolint:errcheck // best-effort cleanup

	version, dirty, err := migrator.Version()
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Reachable = true
	status.MigrationVersion = version
	status.Dirty = dirty

	if version > 0 {
		if name, err := store.MigrationName(version); err == nil {
			status.MigrationName = name
		}
	}
	return status
}

func formatStatus(status DatabaseStatus) string {
	if !status.Reachable {
		return fmt.Sprintf("database: unreachable (%s)", status.Error)
	}

	line := fmt.Sprintf("database: ok\nmigration version: %d", status.MigrationVersion)
	if status.MigrationName != "" {
		line += fmt.Sprintf(" (%s)", status.MigrationName)
	}
	if status.Dirty {
		line += "\nWARNING: schema is dirty; manual intervention required"
	}
	return line
}
