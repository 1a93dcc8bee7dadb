package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/printforge/planner/core/model"
	"github.com/printforge/planner/core/planversion"
)

// SQLiteStore persists the canonical plan in a SQLite database. The publish
// contract is implemented as a single transaction: delete superseded cycles,
// insert the new set, bump the version row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
CREATE TABLE IF NOT EXISTS plan_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version INTEGER NOT NULL
);
INSERT OR IGNORE INTO plan_version (id, version) VALUES (1, 0);
CREATE TABLE IF NOT EXISTS plan_cycles (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    printer_id TEXT NOT NULL,
    start_ts INTEGER NOT NULL,
    end_ts INTEGER NOT NULL,
    color TEXT,
    material TEXT,
    grams REAL,
    status TEXT NOT NULL,
    source TEXT NOT NULL,
    locked INTEGER NOT NULL DEFAULT 0
);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Publish atomically replaces the plan. A prior-token mismatch aborts with
// ErrVersionConflict before anything is touched.
func (s *SQLiteStore) Publish(ctx context.Context, cycles []model.PlannedCycle, prior planversion.PlanVersion, preserve []string) (planversion.PlanVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return planversion.VersionNone, err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	if err := tx.QueryRowContext(ctx, `SELECT version FROM plan_version WHERE id = 1`).Scan(&current); err != nil {
		return planversion.VersionNone, err
	}
	if planversion.PlanVersion(current) != prior {
		return planversion.VersionNone, planversion.ErrVersionConflict
	}

	del := `DELETE FROM plan_cycles`
	args := []any{}
	if len(preserve) > 0 {
		del += ` WHERE id NOT IN (?` + strings.Repeat(",?", len(preserve)-1) + `)`
		for _, id := range preserve {
			args = append(args, id)
		}
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return planversion.VersionNone, err
	}

	for _, c := range cycles {
		_, err := tx.ExecContext(ctx, `
INSERT INTO plan_cycles (id, project_id, printer_id, start_ts, end_ts, color, material, grams, status, source, locked)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ProjectID, c.PrinterID, c.Start.Unix(), c.End.Unix(),
			c.Color, c.Material, c.Grams, c.Status.String(), c.Source.String(), boolToInt(c.Locked))
		if err != nil {
			return planversion.VersionNone, err
		}
	}

	next := current + 1
	if _, err := tx.ExecContext(ctx, `UPDATE plan_version SET version = ? WHERE id = 1`, next); err != nil {
		return planversion.VersionNone, err
	}
	if err := tx.Commit(); err != nil {
		return planversion.VersionNone, err
	}
	return planversion.PlanVersion(next), nil
}

// Version returns the current canonical token.
func (s *SQLiteStore) Version(ctx context.Context) (planversion.PlanVersion, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM plan_version WHERE id = 1`).Scan(&v); err != nil {
		return planversion.VersionNone, err
	}
	return planversion.PlanVersion(v), nil
}

// Cycles returns the full snapshot for the given token. The token is
// re-checked inside the read so a concurrent publish surfaces as a conflict
// rather than a torn snapshot.
func (s *SQLiteStore) Cycles(ctx context.Context, v planversion.PlanVersion) ([]model.PlannedCycle, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	if err := tx.QueryRowContext(ctx, `SELECT version FROM plan_version WHERE id = 1`).Scan(&current); err != nil {
		return nil, err
	}
	if planversion.PlanVersion(current) != v {
		return nil, planversion.ErrVersionConflict
	}

	rows, err := tx.QueryContext(ctx, `
SELECT id, project_id, printer_id, start_ts, end_ts, color, material, grams, status, source, locked
FROM plan_cycles ORDER BY start_ts, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.PlannedCycle
	for rows.Next() {
		var c model.PlannedCycle
		var start, end int64
		var status, source string
		var locked int
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.PrinterID, &start, &end,
			&c.Color, &c.Material, &c.Grams, &status, &source, &locked); err != nil {
			return nil, err
		}
		c.Start = time.Unix(start, 0).UTC()
		c.End = time.Unix(end, 0).UTC()
		if c.Status, err = model.ParseCycleStatus(status); err != nil {
			return nil, err
		}
		if source == "manual" {
			c.Source = model.SourceManual
		}
		c.Locked = locked != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
