package runlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLineHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name       string
		level      slog.Level
		message    string
		attrs      []slog.Attr
		want       string
		wantMirror bool
	}{
		{
			name:    "info stays in file",
			level:   slog.LevelInfo,
			message: "deleted",
			attrs:   []slog.Attr{slog.String("path", "/p/a (1).jpg")},
			want:    "2024-06-15T14:30:45Z\tINFO\trun-1\tdeleted\tpath=/p/a (1).jpg\n",
		},
		{
			name:       "warning is mirrored",
			level:      slog.LevelWarn,
			message:    "skipping directory",
			attrs:      []slog.Attr{slog.String("dir", "/locked")},
			want:       "2024-06-15T14:30:45Z\tWARN\trun-1\tskipping directory\tdir=/locked\n",
			wantMirror: true,
		},
		{
			name:       "error is mirrored",
			level:      slog.LevelError,
			message:    "delete failed",
			attrs:      []slog.Attr{slog.Int("code", 13)},
			want:       "2024-06-15T14:30:45Z\tERROR\trun-1\tdelete failed\tcode=13\n",
			wantMirror: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf, mirror bytes.Buffer
			h := newLineHandler(&buf, &mirror, "run-1")

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}

			wantMirror := ""
			if tt.wantMirror {
				wantMirror = tt.want
			}
			if got := mirror.String(); got != wantMirror {
				t.Errorf("mirror output = %q, want %q", got, wantMirror)
			}
		})
	}
}

func TestLineHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := newLineHandler(&buf, nil, "run-1")
	h.attrs = []slog.Attr{slog.String("a", "1")}

	h2 := h.WithAttrs([]slog.Attr{slog.String("dir", "/photos")}).(*lineHandler)
	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "scan", 0)
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "a=1\tdir=/photos") {
		t.Errorf("expected pre-set attrs, got %q", buf.String())
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.Local)
	if got := FileName(ts); got != "delete_operation_20240309_070501.log" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestLog_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	started := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

	var mirror bytes.Buffer
	l, err := Open(dir, started, "run-42", &mirror)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	l.Header("/photos")
	l.Deleted("/photos/a (1).jpg", "removed")
	l.DeleteFailed("/photos/b (1).jpg", errors.New("permission denied"))
	l.Skipped("/photos/c (1).jpg", "dry run")
	l.Logger().Warn("excluding unreadable image", "path", "/photos/x.jpg")
	l.Footer(started.Add(2*time.Second), "completed")

	if d, f, s := l.Counts(); d != 1 || f != 1 || s != 1 {
		t.Errorf("Counts() = %d, %d, %d", d, f, s)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		"\trun-42\trun started\troot=/photos",
		"deleted\tpath=/photos/a (1).jpg\taction=removed",
		"ERROR\trun-42\tdelete failed\tpath=/photos/b (1).jpg\terror=permission denied",
		"skipped\tpath=/photos/c (1).jpg\treason=dry run",
		"run finished\tstatus=completed\tdeleted=1\tfailed=1\tskipped=1",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 6 {
		t.Errorf("expected 6 lines, got %d", len(lines))
	}

	if strings.Count(mirror.String(), "\n") != 2 {
		t.Errorf("expected warning and error mirrored, got %q", mirror.String())
	}
}

func TestOpen_Unwritable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	// A regular file in place of the directory cannot hold the log.
	if _, err := Open(filepath.Join(file, "logs"), time.Now(), "x", nil); err == nil {
		t.Error("expected error")
	}
}
