// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coredb owns hb's SQLite database, which keeps the history of
// persisted argument values.
package coredb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ohos-build/hb/internal/paths"
	_ "modernc.org/sqlite"
)

const (
	sqliteDriverName = "sqlite"
	dbFileName       = "hb.db"

	defaultBusyTimeout = 5 * time.Second
	defaultJournalMode = "WAL"
	defaultSynchronous = "NORMAL"

	defaultMaxEntries = 10000
)

// Options controls how the DB is opened.
type Options struct {
	// DataDir is the directory holding hb.db. If empty the platform-default
	// hb data directory is used.
	DataDir string
	// MaxEntries bounds the number of history rows kept. Zero uses defaults.
	MaxEntries int64
}

// DB wraps the SQLite connection.
type DB struct {
	sql  *sql.DB
	opts Options
}

// Open initialises the DB with required pragmas and schema.
func Open(ctx context.Context, opts Options) (*DB, error) {
	dir := opts.DataDir
	if dir == "" {
		dir = paths.DataDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", filepath.ToSlash(dbPath), int(defaultBusyTimeout/time.Millisecond))

	conn, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	resolved := opts
	resolved.DataDir = dir
	if resolved.MaxEntries <= 0 {
		resolved.MaxEntries = defaultMaxEntries
	}

	if err := configureConnection(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := applyMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{sql: conn, opts: resolved}, nil
}

// Close shuts down the underlying connection.
func (db *DB) Close() error {
	if db == nil || db.sql == nil {
		return nil
	}
	return db.sql.Close()
}

func configureConnection(ctx context.Context, conn *sql.DB) error {
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	statements := []string{
		fmt.Sprintf("PRAGMA journal_mode=%s;", defaultJournalMode),
		fmt.Sprintf("PRAGMA synchronous=%s;", defaultSynchronous),
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute pragma %q: %w", stmt, err)
		}
	}
	return nil
}
