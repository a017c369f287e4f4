package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"mediadupfinder/internal/fileutil"
	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/plan"
	"mediadupfinder/internal/report"
	"mediadupfinder/internal/runlog"
	"mediadupfinder/internal/storage"
)

// execOptions maps the deletion flags to executor options
func execOptions(opts runOptions) []fileutil.ExecOption {
	switch {
	case opts.moveTo != "":
		return []fileutil.ExecOption{fileutil.WithMoveTo(opts.moveTo)}
	case opts.trash:
		return []fileutil.ExecOption{fileutil.WithTrash()}
	default:
		return nil
	}
}

func describeAction(opts runOptions) string {
	switch {
	case opts.moveTo != "":
		return fmt.Sprintf("move to %s", opts.moveTo)
	case opts.trash:
		return "move to trash"
	default:
		return "permanently delete"
	}
}

// confirmPlan asks which candidates may be deleted and returns them.
// With perCategory every group type present in p gets its own listing and
// question; a candidate is approved when any of its types is.
func confirmPlan(con *console, dirs []*models.DirGroups, p *plan.Plan, opts runOptions) *plan.Plan {
	if opts.yes {
		return p
	}

	action := describeAction(opts)
	if !opts.perCategory {
		fmt.Fprintf(con.out, "\nAre you sure you want to %s %d files? [y/N]: ", action, p.Len())
		if con.confirm() {
			return p
		}
		return p.Filter()
	}

	var accepted []models.GroupType
	for _, t := range models.GroupTypes {
		n := p.Count(t)
		if n == 0 {
			continue
		}
		fmt.Fprintf(con.out, "\n=== %s ===\n", t.Label())
		report.WriteCategory(con.out, dirs, t)
		fmt.Fprintf(con.out, "\n%s: %d files. Proceed? [y/N]: ", action, n)
		if con.confirm() {
			accepted = append(accepted, t)
		}
	}
	return p.Filter(accepted...)
}

// executePlan acts on every approved candidate, recording each outcome in
// the run log and the history store. SIGINT or SIGTERM stops the batch
// after the file in progress.
func executePlan(ctx context.Context, p *plan.Plan, opts runOptions, rl *runlog.Log, store *storage.Storage) fileutil.Stats {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	types := make(map[string][]string, p.Len())
	files := make([]media.File, 0, p.Len())
	for _, c := range p.Candidates {
		names := make([]string, len(c.Types))
		for i, t := range c.Types {
			names[i] = string(t)
		}
		types[c.File.Path] = names
		files = append(files, c.File)
	}

	var e *fileutil.Executor
	record := func(o fileutil.Outcome) {
		action := e.Mode().String()
		d := storage.Deletion{
			RunID:  rl.RunID(),
			Path:   o.File.Path,
			Types:  types[o.File.Path],
			Size:   o.File.Size,
			Action: action,
			Dest:   o.Dest,
			At:     time.Now(),
		}
		if o.Err != nil {
			rl.DeleteFailed(o.File.Path, o.Err)
			d.Error = o.Err.Error()
		} else {
			rl.Deleted(o.File.Path, action)
		}

		if store == nil {
			return
		}
		if err := store.RecordDeletion(d); err != nil {
			rl.Logger().Warn("failed to record deletion in history", "path", o.File.Path, "error", err)
		}
	}

	e = fileutil.NewExecutor(append(execOptions(opts), fileutil.WithOutcome(record))...)
	return e.Execute(ctx, files)
}

func printStats(con *console, opts runOptions, stats fileutil.Stats) {
	fmt.Fprintln(con.out)
	if stats.Stopped {
		fmt.Fprintln(con.out, "Interrupted: stopped after the current file.")
	}
	switch {
	case opts.moveTo != "":
		fmt.Fprintf(con.out, "Moved %d files to %s\n", stats.Done, opts.moveTo)
	case opts.trash:
		fmt.Fprintf(con.out, "Moved %d files to trash\n", stats.Done)
	default:
		fmt.Fprintf(con.out, "Permanently deleted %d files\n", stats.Done)
	}
	if stats.Failed > 0 {
		fmt.Fprintf(con.out, "Failed: %d files (see log)\n", stats.Failed)
	}
	fmt.Fprintf(con.out, "Space reclaimed: %s\n", humanize.IBytes(uint64(stats.Bytes)))
}
