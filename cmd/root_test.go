package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediadupfinder/internal/config"
	"mediadupfinder/internal/storage"
)

// execute runs the command tree with args, feeding input as stdin
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(input))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
log_dir = "/var/log/media"
history_db = "/var/lib/media/history.db"
workers = 3

[probe]
timeout = "5s"
`)

	tests := []struct {
		name        string
		args        []string
		wantWorkers int
		wantLogDir  string
		wantHistory string
		wantTimeout time.Duration
	}{
		{"file only", nil, 3, "/var/log/media", "/var/lib/media/history.db", 5 * time.Second},
		{"workers flag", []string{"--workers", "5"}, 5, "/var/log/media", "/var/lib/media/history.db", 5 * time.Second},
		{"log dir flag", []string{"--log-dir", "/tmp/logs"}, 3, "/tmp/logs", "/var/lib/media/history.db", 5 * time.Second},
		{"history none", []string{"--history", "none"}, 3, "/var/log/media", "", 5 * time.Second},
		{"probe timeout flag", []string{"--probe-timeout", "2m"}, 3, "/var/log/media", "/var/lib/media/history.db", 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"config", "show", "--config", path}, tt.args...)
			out, err := execute(t, "", args...)
			if err != nil {
				t.Fatalf("config show error = %v", err)
			}

			cfg, err := (&config.Manager{}).Read(strings.NewReader(out))
			if err != nil {
				t.Fatalf("output is not a valid config: %v\n%s", err, out)
			}
			if cfg.Workers != tt.wantWorkers {
				t.Errorf("workers = %d, want %d", cfg.Workers, tt.wantWorkers)
			}
			if cfg.LogDir != tt.wantLogDir {
				t.Errorf("log_dir = %q, want %q", cfg.LogDir, tt.wantLogDir)
			}
			if cfg.HistoryDB != tt.wantHistory {
				t.Errorf("history_db = %q, want %q", cfg.HistoryDB, tt.wantHistory)
			}
			if cfg.Probe.Timeout.Duration != tt.wantTimeout {
				t.Errorf("probe timeout = %v, want %v", cfg.Probe.Timeout.Duration, tt.wantTimeout)
			}
		})
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, err := execute(t, "", "config", "show", "--config", path, "--workers", "0")
	if err == nil || !strings.Contains(err.Error(), "invalid settings") {
		t.Errorf("error = %v, want invalid settings", err)
	}
}

func TestHistory_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	for _, args := range [][]string{
		{"history"},
		{"history", "show", "abc"},
	} {
		args = append(args, "--config", path, "--history", "none")
		_, err := execute(t, "", args...)
		if err == nil || err.Error() != "run history is disabled" {
			t.Errorf("%v: error = %v", args, err)
		}
	}
}

func TestConfigInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	out, err := execute(t, "", "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("first init error = %v", err)
	}
	if !strings.Contains(out, "Config written to "+path) {
		t.Errorf("output = %q", out)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "config", "init", "--config", path); err == nil {
		t.Fatal("second init should fail")
	}
	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(written, again) {
		t.Error("existing config was modified")
	}
}

func TestInteractive_NeedsTerminal(t *testing.T) {
	root, dup := writeTree(t)
	path := filepath.Join(t.TempDir(), "missing.toml")

	out, err := execute(t, root+"\n", "interactive", "--config", path, "--history", "none",
		"--log-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "needs a terminal") {
		t.Fatalf("error = %v", err)
	}
	if strings.Contains(out, "Folder to scan") {
		t.Errorf("prompted without a terminal:\n%s", out)
	}
	if !exists(dup) {
		t.Error("file deleted")
	}
}

func TestInteractive_QuotedFolder(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", "%s\n"},
		{"double quoted", "\"%s\"\n"},
		{"single quoted", "'%s'\n"},
		{"no newline", "  \"%s\"  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, dup := writeTree(t)
			path := filepath.Join(t.TempDir(), "missing.toml")
			history := filepath.Join(t.TempDir(), "history.db")
			input := strings.Replace(tt.input, "%s", root, 1)

			out, err := execute(t, input, "interactive", "--dry-run", "--config", path,
				"--history", history, "--log-dir", t.TempDir())
			if err != nil {
				t.Fatalf("interactive error = %v\n%s", err, out)
			}
			if !strings.Contains(out, "Scanning: "+root+"\n") {
				t.Errorf("output = %s", out)
			}
			if !strings.Contains(out, "Dry run") {
				t.Errorf("expected a dry run:\n%s", out)
			}
			if !exists(dup) {
				t.Error("dry run deleted a file")
			}
		})
	}
}

func TestInteractive_EmptyFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	_, err := execute(t, "\"\"\n", "interactive", "--yes", "--config", path, "--history", "none")
	if err == nil || err.Error() != "no folder given" {
		t.Errorf("error = %v", err)
	}
}

func TestHistoryShow_Failed(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	run := &storage.Run{
		ID:        "3f2a9c1e-0000-4000-8000-000000000001",
		Root:      "/photos",
		Mode:      "delete",
		LogPath:   "/logs/delete_operation.log",
		StartedAt: now,
	}
	if err := store.BeginRun(run); err != nil {
		t.Fatal(err)
	}
	for _, d := range []storage.Deletion{
		{RunID: run.ID, Path: "/photos/a (1).jpg", Types: []string{"copy"}, Size: 10, Action: "removed", At: now},
		{RunID: run.ID, Path: "/photos/b (1).jpg", Types: []string{"image-fingerprint", "copy"}, Size: 20, Action: "removed",
			Error: "permission denied", At: now},
	} {
		if err := store.RecordDeletion(d); err != nil {
			t.Fatal(err)
		}
	}
	run.Status = storage.StatusCompleted
	run.FinishedAt = now
	run.Deleted, run.Failed = 1, 1
	if err := store.FinishRun(run); err != nil {
		t.Fatal(err)
	}
	store.Close()

	path := filepath.Join(t.TempDir(), "missing.toml")
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"history", "show", "3f2a"},
			want: []string{"Run " + run.ID, "Root:        /photos", "Failed:      1",
				"removed /photos/a (1).jpg [copy]",
				"FAILED  /photos/b (1).jpg [image-fingerprint, copy]", "permission denied"},
		},
		{
			name:    "failed only",
			args:    []string{"history", "show", "3f2a", "--failed"},
			want:    []string{"Run " + run.ID, "FAILED  /photos/b (1).jpg", "permission denied"},
			notWant: []string{"/photos/a (1).jpg"},
		},
		{
			name: "list",
			args: []string{"history"},
			want: []string{"3f2a9c1e", storage.StatusCompleted, "/photos"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args...), "--config", path, "--history", dbPath)
			out, err := execute(t, "", args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output is missing %q:\n%s", want, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q:\n%s", s, out)
				}
			}
		})
	}

	if _, err := execute(t, "", "history", "show", "ffff", "--config", path, "--history", dbPath); err == nil {
		t.Error("unknown run id should fail")
	}
}
