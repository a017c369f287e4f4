package scan

import (
	"sync"

	"mediadupfinder/internal/models"
	"mediadupfinder/internal/plan"
)

// KindStatus counts the work done on one media kind
type KindStatus struct {
	Files    int `json:"files"`
	Groups   int `json:"groups"`
	ToDelete int `json:"to_delete"`
}

func (k *KindStatus) add(o KindStatus) {
	k.Files += o.Files
	k.Groups += o.Groups
	k.ToDelete += o.ToDelete
}

// DirStatus records how one directory was processed
type DirStatus struct {
	Dir        string     `json:"dir"`
	Images     KindStatus `json:"images"`
	Videos     KindStatus `json:"videos"`
	Unreadable int        `json:"unreadable"` // images excluded from grouping
	Unprobed   int        `json:"unprobed"`   // videos matched by size only
	CrossType  int        `json:"cross_type"` // image/video name groups
	Err        error      `json:"-"`          // set when the directory was skipped
}

// Skipped reports whether the directory could not be processed
func (d DirStatus) Skipped() bool {
	return d.Err != nil
}

// Summary aggregates the statuses of a whole run
type Summary struct {
	Dirs       int        `json:"dirs"`
	Skipped    int        `json:"skipped"`
	Images     KindStatus `json:"images"`
	Videos     KindStatus `json:"videos"`
	Unreadable int        `json:"unreadable"`
	Unprobed   int        `json:"unprobed"`
	CrossType  int        `json:"cross_type"`
}

// Result is the outcome of a tree scan. It is safe for concurrent use.
type Result struct {
	Root     string
	Dirs     []*models.DirGroups
	Statuses []DirStatus

	mu sync.Mutex
}

func (r *Result) add(groups *models.DirGroups, status DirStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if groups != nil && !groups.Empty() {
		r.Dirs = append(r.Dirs, groups)
	}
	r.Statuses = append(r.Statuses, status)
}

// Summary totals the per-directory statuses
func (r *Result) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Summary
	for _, st := range r.Statuses {
		if st.Skipped() {
			s.Skipped++
			continue
		}
		s.Dirs++
		s.Images.add(st.Images)
		s.Videos.add(st.Videos)
		s.Unreadable += st.Unreadable
		s.Unprobed += st.Unprobed
		s.CrossType += st.CrossType
	}
	return s
}

// Plan builds the deletion plan of every directory with groups
func (r *Result) Plan() *plan.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()

	return plan.Build(r.Dirs)
}
