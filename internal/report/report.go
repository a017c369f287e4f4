package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/plan"
	"mediadupfinder/internal/scan"
)

const rule = "================================================================================"

// Report is the reviewable summary of a run, written before anything is deleted
type Report struct {
	Root      string
	Generated time.Time
	Dirs      []*models.DirGroups
	Plan      *plan.Plan
	Summary   scan.Summary
}

// PathFor returns the report path belonging to a run log
func PathFor(logPath string) string {
	return strings.TrimSuffix(logPath, filepath.Ext(logPath)) + "_report.txt"
}

// WriteFile renders the report to path
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}

// Write renders the report to w
func (r *Report) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "=== Media duplicate report ===")
	fmt.Fprintf(bw, "Root: %s\n", r.Root)
	fmt.Fprintf(bw, "Generated: %s\n\n", r.Generated.Format("2006-01-02 15:04:05"))

	WriteSummary(bw, r.Summary)
	fmt.Fprintf(bw, "\nFound %d files that can be deleted (%s)\n",
		r.Plan.Len(), humanize.IBytes(uint64(r.Plan.TotalSize())))

	groups := 0
	for _, d := range r.Dirs {
		fmt.Fprintf(bw, "\n%s\nDirectory: %s\n%s\n", rule, d.Dir, rule)
		for _, t := range models.GroupTypes {
			groups += writeGroups(bw, d, t)
		}
	}

	fmt.Fprintf(bw, "\n\nTotal: %d duplicate groups, %d files to delete\n", groups, r.Plan.Len())

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteSummary renders the per-kind totals of a scan
func WriteSummary(w io.Writer, s scan.Summary) {
	fmt.Fprintf(w, "Directories scanned: %d", s.Dirs)
	if s.Skipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", s.Skipped)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Images:")
	fmt.Fprintf(w, "  Files:          %d", s.Images.Files)
	if s.Unreadable > 0 {
		fmt.Fprintf(w, " (%d unreadable)", s.Unreadable)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Groups:         %d\n", s.Images.Groups)
	fmt.Fprintf(w, "  To delete:      %d\n", s.Images.ToDelete)

	fmt.Fprintln(w, "Videos:")
	fmt.Fprintf(w, "  Files:          %d", s.Videos.Files)
	if s.Unprobed > 0 {
		fmt.Fprintf(w, " (%d without metadata)", s.Unprobed)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Groups:         %d\n", s.Videos.Groups)
	fmt.Fprintf(w, "  To delete:      %d\n", s.Videos.ToDelete)

	fmt.Fprintf(w, "Images sharing a name with a video: %d groups\n", s.CrossType)
}

// WriteCategory renders every group of type t across dirs and returns how
// many groups were written
func WriteCategory(w io.Writer, dirs []*models.DirGroups, t models.GroupType) int {
	n := 0
	for _, d := range dirs {
		if d.Count(t) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nDirectory: %s", d.Dir)
		n += writeGroups(w, d, t)
	}
	return n
}

func writeGroups(w io.Writer, d *models.DirGroups, t models.GroupType) int {
	count := d.Count(t)
	if count == 0 {
		return 0
	}
	fmt.Fprintf(w, "\n--- %s (%d) ---\n", t.Label(), count)

	switch t {
	case models.ImageFingerprint:
		for i, g := range d.Images {
			writeGroup(w, d, i+1, g.Key, []media.File{g.Keep}, g.Delete)
		}
	case models.VideoFingerprint:
		for i, g := range d.Videos {
			writeGroup(w, d, i+1, g.Key, []media.File{g.Keep}, g.Delete)
		}
	case models.CopyName:
		for i, g := range d.Copies {
			writeGroup(w, d, i+1, g.Origin.Name(), []media.File{g.Origin}, g.Copies)
		}
	case models.CrossType:
		for i, g := range d.CrossType {
			writeGroup(w, d, i+1, g.Stem, g.Videos, g.Images)
		}
	}
	return count
}

func writeGroup(w io.Writer, d *models.DirGroups, n int, title string, keep, del []media.File) {
	fmt.Fprintf(w, "\nGroup %d: %s\n", n, title)
	for _, f := range keep {
		fmt.Fprintf(w, "  [keep]   %s - %s\n", f.Name(), d.Describe(f))
	}
	for _, f := range del {
		fmt.Fprintf(w, "  [delete] %s - %s\n", f.Name(), d.Describe(f))
	}
}
