package runlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Log is the append-only record of one run. It is opened once, written
// through for every entry and closed when the run ends.
type Log struct {
	f       *os.File
	path    string
	runID   string
	started time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	deleted int
	failed  int
	skipped int
}

// FileName returns the log file name for a run started at t
func FileName(t time.Time) string {
	return "delete_operation_" + t.Format("20060102_150405") + ".log"
}

// Open creates the log file for a run in dir. Records at warning level
// and above are mirrored to mirror when it is non-nil.
func Open(dir string, started time.Time, runID string, mirror io.Writer) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(dir, FileName(started))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	return &Log{
		f:       f,
		path:    path,
		runID:   runID,
		started: started,
		logger:  slog.New(newLineHandler(f, mirror, runID)),
	}, nil
}

// Logger returns the logger writing into this run log
func (l *Log) Logger() *slog.Logger { return l.logger }

// Path returns the location of the log file
func (l *Log) Path() string { return l.path }

// RunID returns the identifier stamped on every line
func (l *Log) RunID() string { return l.runID }

// Header records the start of a run
func (l *Log) Header(root string) {
	l.logger.Info("run started", "root", root, "started", l.started.Format(time.RFC3339))
}

// Deleted records a successful removal
func (l *Log) Deleted(path, action string) {
	l.mu.Lock()
	l.deleted++
	l.mu.Unlock()
	l.logger.Info("deleted", "path", path, "action", action)
}

// DeleteFailed records a removal that did not happen
func (l *Log) DeleteFailed(path string, err error) {
	l.mu.Lock()
	l.failed++
	l.mu.Unlock()
	l.logger.Error("delete failed", "path", path, "error", err)
}

// Skipped records a candidate that was deliberately left in place
func (l *Log) Skipped(path, reason string) {
	l.mu.Lock()
	l.skipped++
	l.mu.Unlock()
	l.logger.Info("skipped", "path", path, "reason", reason)
}

// Counts returns how many deletions succeeded, failed and were skipped
func (l *Log) Counts() (deleted, failed, skipped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deleted, l.failed, l.skipped
}

// Footer records the end of a run with its totals
func (l *Log) Footer(finished time.Time, status string) {
	deleted, failed, skipped := l.Counts()
	l.logger.Info("run finished",
		"status", status,
		"deleted", deleted,
		"failed", failed,
		"skipped", skipped,
		"finished", finished.Format(time.RFC3339),
		"elapsed", finished.Sub(l.started).Round(time.Millisecond),
	)
}

// Close flushes and closes the log file
func (l *Log) Close() error {
	if err := l.f.Sync(); err != nil {
		l.f.Close()
		return fmt.Errorf("syncing log file: %w", err)
	}
	return l.f.Close()
}
