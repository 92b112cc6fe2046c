// Package sqlite stores the placement journal in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jcmexdev/food-storefront/internal/coordinator/placementlog"
	"github.com/jcmexdev/food-storefront/internal/pkg/sqlitedb"
)

// One row per transition; the latest row per placement_id is its state.
const schema = `
CREATE TABLE IF NOT EXISTS placement_log (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    placement_id    TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    step            TEXT    NOT NULL DEFAULT '',
    -- JSON request that started the placement, STARTED rows only.
    payload         TEXT,
    -- JSON array of failure messages.
    errors          TEXT    NOT NULL DEFAULT '[]',
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    recorded_at     TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_placement_log_placement ON placement_log(placement_id, id);
CREATE INDEX IF NOT EXISTS idx_placement_log_trace ON placement_log(trace_id);
`

var _ placementlog.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) (*Repository, error) {
	if err := sqlitedb.ApplySchema(db, schema); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Append inserts a row. Safe for concurrent use.
func (r *Repository) Append(ctx context.Context, e *placementlog.Entry) error {
	errs := "[]"
	if len(e.Errors) > 0 {
		b, err := json.Marshal(e.Errors)
		if err != nil {
			return fmt.Errorf("sqlite: encode errors for %q: %w", e.PlacementID, err)
		}
		errs = string(b)
	}

	const q = `
		INSERT INTO placement_log
			(placement_id, status, step, payload, errors, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		e.PlacementID,
		string(e.Status),
		e.Step,
		sqlitedb.NullableString(e.Payload),
		errs,
		e.TraceID,
		e.SpanID,
		sqlitedb.FormatTime(e.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append placement log for %q: %w", e.PlacementID, err)
	}
	return nil
}

// History returns every entry for placementID in insertion order.
func (r *Repository) History(ctx context.Context, placementID string) ([]placementlog.Entry, error) {
	const q = `
		SELECT placement_id, status, step, COALESCE(payload, ''), errors, trace_id, span_id, recorded_at
		FROM   placement_log
		WHERE  placement_id = ?
		ORDER  BY id`

	rows, err := r.db.QueryContext(ctx, q, placementID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", placementID, err)
	}
	defer rows.Close()

	var out []placementlog.Entry
	for rows.Next() {
		var (
			e          placementlog.Entry
			errs       string
			recordedAt string
		)
		if err := rows.Scan(&e.PlacementID, &e.Status, &e.Step, &e.Payload, &errs, &e.TraceID, &e.SpanID, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan placement log: %w", err)
		}
		if err := json.Unmarshal([]byte(errs), &e.Errors); err != nil {
			return nil, fmt.Errorf("sqlite: decode errors for %q: %w", placementID, err)
		}
		if len(e.Errors) == 0 {
			e.Errors = nil
		}
		if e.RecordedAt, err = sqlitedb.ParseTime(recordedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: history for %q: %w", placementID, err)
	}
	return out, nil
}
