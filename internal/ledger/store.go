// Package ledger keeps a SQLite history of runs and the jobs they executed.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/forPelevin/recap/internal/types"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    input       TEXT NOT NULL,
    status      TEXT NOT NULL,
    started_at  TEXT NOT NULL,
    finished_at TEXT,
    recaps      INTEGER NOT NULL DEFAULT 0,
    failures    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS jobs (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    kind       TEXT NOT NULL,
    subject    TEXT NOT NULL,
    variant    TEXT NOT NULL,
    status     TEXT NOT NULL,
    path       TEXT,
    error      TEXT,
    elapsed_ms INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_run ON jobs(run_id);
`

// Run statuses.
const (
	RunRunning = "running"
	RunDone    = "done"
	RunPartial = "partial"
	RunFailed  = "failed"
)

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

type RunSummary struct {
	ID         string
	Input      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Recaps     int
	Failures   int
}

type JobRow struct {
	Kind    string
	Subject string
	Variant string
	Status  string
	Path    string
	Error   string
	Elapsed time.Duration
}

// Open initializes or connects to the ledger database and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Workers record jobs concurrently; one connection serializes writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) StartRun(ctx context.Context, id, input string) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (id, input, status, started_at) VALUES (?, ?, ?, ?)`,
		id, input, RunRunning, now())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id, status string, recaps, failures int) error {
	_, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, recaps = ?, failures = ? WHERE id = ?`,
		status, now(), recaps, failures, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordJob implements ports.Recorder.
func (s *Store) RecordJob(ctx context.Context, runID string, ev types.JobEvent) error {
	var errText any
	if ev.Err != nil {
		errText = ev.Err.Error()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (run_id, kind, subject, variant, status, path, error, elapsed_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, ev.Kind, ev.Subject, ev.Variant.String(), string(ev.Status),
		nullableString(ev.Path), errText, ev.Elapsed.Milliseconds(), now())
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input, status, started_at, COALESCE(finished_at, ''), recaps, failures
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Input, &r.Status, &started, &finished, &r.Recaps, &r.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Jobs lists the jobs of one run in insertion order. A unique ID prefix is
// accepted.
func (s *Store) Jobs(ctx context.Context, runID string) ([]JobRow, error) {
	id, err := s.resolveRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, subject, variant, status, COALESCE(path, ''), COALESCE(error, ''), elapsed_ms
         FROM jobs WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var out []JobRow
	for rows.Next() {
		var j JobRow
		var ms int64
		if err := rows.Scan(&j.Kind, &j.Subject, &j.Variant, &j.Status, &j.Path, &j.Error, &ms); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.Elapsed = time.Duration(ms) * time.Millisecond
		out = append(out, j)
	}
	return out, rows.Err()
}

// ErrRunNotFound is returned when no run matches an ID or prefix.
var ErrRunNotFound = errors.New("run not found")

func (s *Store) resolveRunID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`, prefix, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run prefix %q is ambiguous", prefix)
	}
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return res, err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Fixed-width timestamps keep lexical and chronological order identical.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
