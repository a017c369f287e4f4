package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediadupfinder/internal/storage"
)

func newHistoryCmd(rf *rootFlags) *cobra.Command {
	var limit int
	var failedOnly bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List previous runs",
		Long: `Display the most recent runs recorded in the history database with
their status and deletion totals.

Example:
  mediadupfinder history              # Show the last 10 runs
  mediadupfinder history -n 0         # Show all runs
  mediadupfinder history show 3f2a    # Show the files acted on by a run
  mediadupfinder history show 3f2a --failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, rf, limit)
		},
	}

	historyShowCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the deletions of one run",
		Long: `Show one run and every file it acted on. The run ID may be
abbreviated to any unique prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, rf, args[0], failedOnly)
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to display (0 = all)")
	historyShowCmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed deletions")
	historyCmd.AddCommand(historyShowCmd)
	return historyCmd
}

func openHistoryFor(cmd *cobra.Command, rf *rootFlags) (*storage.Storage, error) {
	cfg, err := rf.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := openHistory(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("run history is disabled")
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, rf *rootFlags, limit int) error {
	store, err := openHistoryFor(cmd, rf)
	if err != nil {
		return err
	}
	defer store.Close()

	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to get runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "Run 'mediadupfinder scan <folder>' to scan for duplicates.")
		return nil
	}

	printRunTable(out, runs)
	return nil
}

func printRunTable(w io.Writer, runs []*storage.Run) {
	fmt.Fprintf(w, "%-8s  %-16s  %-13s  %6s  %7s  %6s  %-10s  %s\n",
		"ID", "Started", "Status", "Files", "Deleted", "Failed", "Freed", "Root")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		fmt.Fprintf(w, "%-8s  %-16s  %-13s  %6d  %7d  %6d  %-10s  %s\n",
			shortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			r.Files,
			r.Deleted,
			r.Failed,
			humanize.IBytes(uint64(r.BytesFreed)),
			shortenPath(r.Root, 40),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runHistoryShow(cmd *cobra.Command, rf *rootFlags, id string, failedOnly bool) error {
	store, err := openHistoryFor(cmd, rf)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	deletions, err := store.Deletions(run.ID, failedOnly)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printRun(out, run)

	if len(deletions) == 0 {
		fmt.Fprintln(out, "\nNo files were acted on.")
		return nil
	}
	fmt.Fprintln(out)
	for _, d := range deletions {
		types := strings.Join(d.Types, ", ")
		switch {
		case d.Error != "":
			fmt.Fprintf(out, "  FAILED  %s [%s]\n          %s\n", d.Path, types, d.Error)
		case d.Dest != "":
			fmt.Fprintf(out, "  %-7s %s [%s]\n          -> %s\n", d.Action, d.Path, types, d.Dest)
		default:
			fmt.Fprintf(out, "  %-7s %s [%s]\n", d.Action, d.Path, types)
		}
	}
	return nil
}

func printRun(w io.Writer, r *storage.Run) {
	fmt.Fprintf(w, "Run %s\n", r.ID)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Root:        %s\n", r.Root)
	fmt.Fprintf(w, "Status:      %s\n", r.Status)
	fmt.Fprintf(w, "Mode:        %s\n", r.Mode)
	fmt.Fprintf(w, "Started:     %s (%s)\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(r.StartedAt))
	if !r.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Finished:    %s\n", r.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Files:       %d in %d groups, %d candidates\n", r.Files, r.Groups, r.Candidates)
	fmt.Fprintf(w, "Deleted:     %d (%s)\n", r.Deleted, humanize.IBytes(uint64(r.BytesFreed)))
	if r.Failed > 0 {
		fmt.Fprintf(w, "Failed:      %d\n", r.Failed)
	}
	fmt.Fprintf(w, "Log:         %s\n", r.LogPath)
	if r.ReportPath != "" {
		fmt.Fprintf(w, "Report:      %s\n", r.ReportPath)
	}
}
