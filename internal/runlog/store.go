package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"daedalus/internal/config"
)

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one daemon lifetime.
type Run struct {
	ID        string
	PID       int
	StartedAt time.Time
	UpdatedAt time.Time
	EndedAt   time.Time
	EndReason string
}

// Ended reports whether the run has been closed out.
func (r Run) Ended() bool { return !r.EndedAt.IsZero() }

// Event is a single lifecycle event within a run.
type Event struct {
	RunID  string
	At     time.Time
	Kind   string
	Detail string
}

// Open initializes or connects to the run-history database.
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.RunDBPath())
}

// OpenPath opens the database at an explicit location and applies migrations.
func OpenPath(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            pid INTEGER NOT NULL,
            started_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            ended_at TEXT,
            end_reason TEXT
        )`,
		`CREATE TABLE IF NOT EXISTS run_events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
            at TEXT NOT NULL,
            kind TEXT NOT NULL,
            detail TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// BeginRun records the start of a daemon run.
func (s *Store) BeginRun(ctx context.Context, id string, pid int) error {
	now := timestamp()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, pid, started_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, pid, now, now,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return s.RecordEvent(ctx, id, "started", "")
}

// Heartbeat bumps the run's updated_at so operators can spot a wedged daemon.
func (s *Store) Heartbeat(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE runs SET updated_at = ? WHERE id = ?`, timestamp(), id,
	); err != nil {
		return fmt.Errorf("heartbeat run: %w", err)
	}
	return nil
}

// EndRun closes out the run with a reason.
func (s *Store) EndRun(ctx context.Context, id, reason string) error {
	now := timestamp()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE runs SET updated_at = ?, ended_at = ?, end_reason = ? WHERE id = ?`,
		now, now, reason, id,
	); err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	return s.RecordEvent(ctx, id, "ended", reason)
}

// RecordEvent appends a lifecycle event to the run.
func (s *Store) RecordEvent(ctx context.Context, runID, kind, detail string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO run_events (run_id, at, kind, detail) VALUES (?, ?, ?, ?)`,
		runID, timestamp(), kind, nullableString(detail),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// LatestRuns returns up to limit runs, newest first.
func (s *Store) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pid, started_at, updated_at, ended_at, end_reason
           FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Events returns the events for a run, oldest first.
func (s *Store) Events(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, at, kind, detail FROM run_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var at string
		var detail sql.NullString
		if err := rows.Scan(&ev.RunID, &at, &ev.Kind, &detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At = parseTimestamp(at)
		ev.Detail = detail.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Prune deletes all but the newest keep runs.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
            SELECT id FROM runs ORDER BY started_at DESC LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var started, updated string
	var ended, reason sql.NullString
	if err := rows.Scan(&run.ID, &run.PID, &started, &updated, &ended, &reason); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTimestamp(started)
	run.UpdatedAt = parseTimestamp(updated)
	if ended.Valid {
		run.EndedAt = parseTimestamp(ended.String)
	}
	run.EndReason = reason.String
	return run, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
