package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no run matches an ID
var ErrRunNotFound = errors.New("run not found")

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusDeclined  = "declined"
	StatusDryRun    = "dry-run"
	StatusNothing   = "no-duplicates"
)

// Run is one invocation of the tool against a root directory
type Run struct {
	ID         string
	Root       string
	Mode       string
	Status     string
	LogPath    string
	ReportPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Groups     int
	Candidates int
	Deleted    int
	Failed     int
	BytesFreed int64
}

// Deletion is the outcome of acting on one delete candidate
type Deletion struct {
	ID     int64
	RunID  string
	Path   string
	Types  []string
	Size   int64
	Action string
	Dest   string
	Error  string // empty on success
	At     time.Time
}

// Storage keeps the history of runs and their deletions. File
// fingerprints are never stored.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage opens or creates the history database at dbPath
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps PRAGMAs and writes on one handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Current schema version
const schemaVersion = 1

// migrations defines all schema migrations
// Each migration should be idempotent (safe to run multiple times)
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // Handled by base schema creation
	},
}

// init creates the database schema
func (s *Storage) init() error {
	// Create schema_version table first
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Create base schema
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		log_path TEXT NOT NULL DEFAULT '',
		report_path TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		files INTEGER NOT NULL DEFAULT 0,
		groups_found INTEGER NOT NULL DEFAULT 0,
		candidates INTEGER NOT NULL DEFAULT 0,
		deleted INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		bytes_freed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		path TEXT NOT NULL,
		group_types TEXT NOT NULL,
		size INTEGER NOT NULL,
		action TEXT NOT NULL,
		dest TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deletions_run_id ON deletions(run_id);
	CREATE INDEX IF NOT EXISTS idx_deletions_failed ON deletions(run_id, error);
	`

	_, err = s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if m.up == "" {
			s.setSchemaVersion(m.version)
			continue
		}

		// Execute migration
		if _, err := s.db.Exec(m.up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		s.setSchemaVersion(m.version)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

// setSchemaVersion records a migration as applied
func (s *Storage) setSchemaVersion(version int) {
	s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

// Path returns the database file location
func (s *Storage) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a run
func (s *Storage) BeginRun(r *Run) error {
	if r.Status == "" {
		r.Status = StatusRunning
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, root, mode, status, log_path, report_path, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Root, r.Mode, r.Status, r.LogPath, r.ReportPath, formatTime(r.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun stores the final totals and status of a run
func (s *Storage) FinishRun(r *Run) error {
	res, err := s.db.Exec(`
		UPDATE runs SET
			status = ?, report_path = ?, finished_at = ?,
			files = ?, groups_found = ?, candidates = ?,
			deleted = ?, failed = ?, bytes_freed = ?
		WHERE id = ?
	`, r.Status, r.ReportPath, formatTime(r.FinishedAt),
		r.Files, r.Groups, r.Candidates,
		r.Deleted, r.Failed, r.BytesFreed,
		r.ID)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", r.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", r.ID, ErrRunNotFound)
	}
	return nil
}

// RecordDeletion stores the outcome for one file
func (s *Storage) RecordDeletion(d Deletion) error {
	_, err := s.db.Exec(`
		INSERT INTO deletions (run_id, path, group_types, size, action, dest, error, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.RunID, d.Path, strings.Join(d.Types, ","), d.Size, d.Action, d.Dest, d.Error, formatTime(d.At))
	if err != nil {
		return fmt.Errorf("failed to record deletion of %s: %w", d.Path, err)
	}
	return nil
}

const runColumns = `id, root, mode, status, log_path, report_path, started_at, finished_at,
	files, groups_found, candidates, deleted, failed, bytes_freed`

// RecentRuns returns up to limit runs, newest first
func (s *Storage) RecentRuns(limit int) ([]*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the run whose ID equals id or, failing that, the only
// run whose ID starts with id
func (s *Storage) GetRun(id string) (*Run, error) {
	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id = ? DESC LIMIT 2`,
		id, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	case runs[0].ID == id || len(runs) == 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("run ID prefix %q is ambiguous", id)
	}
}

// Deletions returns the outcomes recorded for a run in the order they
// happened, optionally only the failures
func (s *Storage) Deletions(runID string, failedOnly bool) ([]*Deletion, error) {
	query := `SELECT id, run_id, path, group_types, size, action, dest, error, at FROM deletions WHERE run_id = ?`
	if failedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deletions: %w", err)
	}
	defer rows.Close()

	var out []*Deletion
	for rows.Next() {
		d := &Deletion{}
		var types, at string
		if err := rows.Scan(&d.ID, &d.RunID, &d.Path, &types, &d.Size, &d.Action, &d.Dest, &d.Error, &at); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if types != "" {
			d.Types = strings.Split(types, ",")
		}
		d.At = parseTime(at)
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanRun(rows *sql.Rows) (*Run, error) {
	r := &Run{}
	var started, finished string
	var report sql.NullString
	err := rows.Scan(
		&r.ID, &r.Root, &r.Mode, &r.Status, &r.LogPath, &report, &started, &finished,
		&r.Files, &r.Groups, &r.Candidates, &r.Deleted, &r.Failed, &r.BytesFreed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	r.ReportPath = report.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// timeLayout has a fixed width so stored times sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
