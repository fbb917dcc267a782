// SPDX-License-Identifier: AGPL-3.0-or-later

package coredb

import (
	"context"
	"database/sql"
	"fmt"
)

var baseMigrations = [...]string{
	`CREATE TABLE IF NOT EXISTS arg_history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		invocation TEXT NOT NULL,
		workflow TEXT NOT NULL,
		name TEXT NOT NULL,
		value TEXT NOT NULL,
		ts INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_arg_history_workflow_seq ON arg_history(workflow, seq);`,
}

func applyMigrations(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range baseMigrations {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
