package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediadupfinder/internal/config"
	"mediadupfinder/internal/fileutil"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/probe"
	"mediadupfinder/internal/report"
	"mediadupfinder/internal/runlog"
	"mediadupfinder/internal/scan"
	"mediadupfinder/internal/storage"
)

// runOptions holds what the front ends decide about one run
type runOptions struct {
	root        string
	dryRun      bool
	yes         bool
	trash       bool
	moveTo      string
	categories  []models.GroupType
	perCategory bool
	open        bool
}

// runFlags are the flags shared by the scan and interactive commands
type runFlags struct {
	dryRun     bool
	yes        bool
	trash      bool
	open       bool
	moveTo     string
	categories []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Preview without deleting")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip confirmation prompts")
	cmd.Flags().BoolVar(&f.trash, "trash", false, "Move files to the system trash instead of deleting them")
	cmd.Flags().StringVar(&f.moveTo, "move-to", "", "Move files to this folder instead of deleting them")
	cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "Only act on these group types (image, video, copy, cross-type)")
	cmd.Flags().BoolVar(&f.open, "open", false, "Open the report with the default viewer")
}

func (f *runFlags) options(root string) (runOptions, error) {
	if f.trash && f.moveTo != "" {
		return runOptions{}, errors.New("--trash and --move-to cannot be used together")
	}
	cats, err := parseCategories(f.categories)
	if err != nil {
		return runOptions{}, err
	}
	return runOptions{
		root:       root,
		dryRun:     f.dryRun,
		yes:        f.yes,
		trash:      f.trash,
		moveTo:     f.moveTo,
		categories: cats,
		open:       f.open,
	}, nil
}

func parseCategories(names []string) ([]models.GroupType, error) {
	var out []models.GroupType
	for _, name := range names {
		t, err := models.ParseGroupType(name)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// openHistory opens the run history store. An empty path disables it.
func openHistory(path string) (*storage.Storage, error) {
	if path == "" {
		return nil, nil
	}
	path, err := config.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStorage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

// reportPath places the report next to the log unless a report directory
// is configured
func reportPath(cfg *config.Config, logPath string) (string, error) {
	path := report.PathFor(logPath)
	if cfg.ReportDir == "" {
		return path, nil
	}
	dir, err := config.ExpandHome(cfg.ReportDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return filepath.Join(dir, filepath.Base(path)), nil
}

func countGroups(dirs []*models.DirGroups) int {
	n := 0
	for _, d := range dirs {
		for _, t := range models.GroupTypes {
			n += d.Count(t)
		}
	}
	return n
}

// runPipeline scans root, writes the report and, once confirmed, acts on
// the delete candidates. A bad root, an uncreatable log or an unopenable
// history database stop the run before anything is scanned.
func runPipeline(ctx context.Context, cfg *config.Config, opts runOptions, con *console) error {
	started := time.Now()

	root, err := filepath.Abs(opts.root)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", root)
	}

	dir, err := config.ExpandHome(cfg.LogDir)
	if err != nil {
		return err
	}
	rl, err := runlog.Open(dir, started, uuid.NewString(), con.errOut)
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	defer rl.Close()
	rl.Header(root)

	store, err := openHistory(cfg.HistoryDB)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	run := &storage.Run{
		ID:        rl.RunID(),
		Root:      root,
		Mode:      fileutil.NewExecutor(execOptions(opts)...).Mode().String(),
		LogPath:   rl.Path(),
		StartedAt: started,
	}
	if store != nil {
		if err := store.BeginRun(run); err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
	}

	finish := func(status string) {
		finished := time.Now()
		rl.Footer(finished, status)
		if store == nil {
			return
		}
		run.Status = status
		run.FinishedAt = finished
		run.Deleted, run.Failed, _ = rl.Counts()
		if err := store.FinishRun(run); err != nil {
			rl.Logger().Warn("failed to record run in history", "error", err)
		}
	}

	fmt.Fprintf(con.out, "Scanning: %s\n", root)
	fmt.Fprintf(con.out, "Workers: %d\n", cfg.Workers)
	fmt.Fprintf(con.out, "Log: %s\n\n", rl.Path())

	progress := &progressLine{w: con.out, enabled: con.tty}
	s := scan.NewScanner(
		scan.WithWorkers(cfg.Workers),
		scan.WithExtensions(cfg.MediaExtensions()),
		scan.WithProber(probe.NewFFProbe(cfg.Probe.Command, cfg.Probe.Timeout.Duration)),
		scan.WithLogger(rl.Logger()),
		scan.WithProgress(progress.update),
	)
	result, err := s.ScanTree(ctx, root)
	progress.clear()
	if err != nil {
		finish(storage.StatusCancelled)
		return fmt.Errorf("scan failed: %w", err)
	}

	summary := result.Summary()
	full := result.Plan()
	run.Files = summary.Images.Files + summary.Videos.Files
	run.Groups = countGroups(result.Dirs)
	run.Candidates = full.Len()

	fmt.Fprintln(con.out, "=== Scan Complete ===")
	report.WriteSummary(con.out, summary)

	rep := &report.Report{
		Root:      root,
		Generated: time.Now(),
		Dirs:      result.Dirs,
		Plan:      full,
		Summary:   summary,
	}
	path, err := reportPath(cfg, rl.Path())
	if err == nil {
		err = rep.WriteFile(path)
	}
	if err != nil {
		rl.Logger().Warn("failed to write report", "path", path, "error", err)
	} else {
		run.ReportPath = path
		fmt.Fprintf(con.out, "\nReport: %s\n", path)
		if opts.open {
			if err := openFile(path); err != nil {
				rl.Logger().Warn("failed to open report", "path", path, "error", err)
			}
		}
	}

	pending := full
	if len(opts.categories) > 0 {
		pending = full.Filter(opts.categories...)
	}
	if pending.Len() == 0 {
		fmt.Fprintln(con.out, "\nNo duplicates found.")
		finish(storage.StatusNothing)
		return nil
	}
	fmt.Fprintf(con.out, "\nFound %d files that can be deleted (%s)\n",
		pending.Len(), humanize.IBytes(uint64(pending.TotalSize())))

	if opts.dryRun {
		fmt.Fprintln(con.out, "\nFiles to be deleted:")
		for _, c := range pending.Candidates {
			types := make([]string, len(c.Types))
			for i, t := range c.Types {
				types[i] = string(t)
			}
			fmt.Fprintf(con.out, "  %s  [%s]\n", c.File.Path, strings.Join(types, ", "))
			rl.Skipped(c.File.Path, "dry run")
		}
		fmt.Fprintln(con.out, "\n(Dry run - no files were modified)")
		fmt.Fprintln(con.out, "Run without --dry-run to actually delete files.")
		finish(storage.StatusDryRun)
		return nil
	}

	approved := confirmPlan(con, result.Dirs, pending, opts)
	for _, c := range pending.Candidates {
		if !approved.Contains(c.File.Path) {
			rl.Skipped(c.File.Path, "not confirmed")
		}
	}
	if approved.Len() == 0 {
		fmt.Fprintln(con.out, "Aborted.")
		finish(storage.StatusDeclined)
		return nil
	}

	stats := executePlan(ctx, approved, opts, rl, store)
	run.BytesFreed = stats.Bytes
	printStats(con, opts, stats)

	if stats.Stopped {
		finish(storage.StatusCancelled)
	} else {
		finish(storage.StatusCompleted)
	}
	return nil
}
