// SPDX-License-Identifier: AGPL-3.0-or-later

package coredb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ohos-build/hb/internal/argstore"
	"github.com/ohos-build/hb/internal/logging"
	"github.com/ohos-build/hb/internal/types"
)

// HistoryEntry is one persisted argument value.
type HistoryEntry struct {
	Seq        int64          `json:"seq" yaml:"seq"`
	Invocation string         `json:"invocation" yaml:"invocation"`
	Workflow   types.Workflow `json:"workflow" yaml:"workflow"`
	Name       string         `json:"name" yaml:"name"`
	Value      any            `json:"value" yaml:"value"`
	Timestamp  time.Time      `json:"timestamp" yaml:"timestamp"`
}

// HistoryFilter narrows List results. Zero values match everything.
type HistoryFilter struct {
	Workflow types.Workflow
	Name     string
	Limit    int
}

// History records argument values written by the argument store.
type History struct {
	db         *sql.DB
	maxEntries int64
	nowFn      func() time.Time
}

var _ argstore.Recorder = (*History)(nil)

// NewHistory returns a History backed by db.
func NewHistory(db *DB) *History {
	if db == nil {
		return nil
	}
	return &History{
		db:         db.sql,
		maxEntries: db.opts.MaxEntries,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// RecordChange appends c and trims the oldest rows beyond the retention
// limit in the same transaction. A database locked by another hb process is
// logged and skipped.
func (h *History) RecordChange(ctx context.Context, c argstore.Change) error {
	if h == nil {
		return nil
	}
	err := h.record(ctx, c)
	if err != nil && IsBusy(err) {
		logging.FromContext(ctx).Warn("history busy, change not recorded", "workflow", c.Workflow, "arg", c.Name, "err", err)
		return nil
	}
	return err
}

func (h *History) record(ctx context.Context, c argstore.Change) (err error) {
	if c.Workflow == "" || c.Name == "" {
		return fmt.Errorf("record history: workflow and name required")
	}
	payload, err := json.Marshal(c.Value)
	if err != nil {
		return fmt.Errorf("encode history value: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO arg_history (invocation, workflow, name, value, ts) VALUES (?, ?, ?, ?, ?)`,
		c.Invocation, string(c.Workflow), c.Name, string(payload), h.nowFn().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("history seq: %w", err)
	}
	if h.maxEntries > 0 && seq > h.maxEntries {
		if _, err = tx.ExecContext(ctx, `DELETE FROM arg_history WHERE seq <= ?`, seq-h.maxEntries); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// List returns matching entries, newest first.
func (h *History) List(ctx context.Context, f HistoryFilter) ([]HistoryEntry, error) {
	if h == nil {
		return nil, errors.New("coredb: history unavailable")
	}
	query := `SELECT seq, invocation, workflow, name, value, ts FROM arg_history WHERE 1=1`
	var params []any
	if f.Workflow != "" {
		query += ` AND workflow = ?`
		params = append(params, string(f.Workflow))
	}
	if f.Name != "" {
		query += ` AND name = ?`
		params = append(params, f.Name)
	}
	query += ` ORDER BY seq DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		params = append(params, f.Limit)
	}

	rows, err := h.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e        HistoryEntry
			workflow string
			raw      string
			ts       int64
		)
		if err := rows.Scan(&e.Seq, &e.Invocation, &workflow, &e.Name, &raw, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Workflow = types.Workflow(workflow)
		if err := json.Unmarshal([]byte(raw), &e.Value); err != nil {
			return nil, fmt.Errorf("decode history value: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}
