package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"mediadupfinder/internal/media"
)

// ErrVanished is returned for a file that no longer exists when its turn comes
var ErrVanished = errors.New("file no longer exists")

// Mode selects what happens to a confirmed delete candidate
type Mode int

const (
	Remove Mode = iota // delete permanently
	Trash              // move to the system trash
	Move               // move into a folder
)

func (m Mode) String() string {
	switch m {
	case Trash:
		return "trashed"
	case Move:
		return "moved"
	default:
		return "removed"
	}
}

// Outcome is the result of acting on one file
type Outcome struct {
	File media.File
	Dest string // new location for Trash and Move, empty otherwise
	Err  error
}

// Stats totals the outcomes of one Execute call
type Stats struct {
	Done    int
	Failed  int
	Bytes   int64 // size of the files acted on successfully
	Stopped bool  // the context was cancelled before every file was tried
}

// Executor applies a deletion mode to files one at a time
type Executor struct {
	mode      Mode
	destDir   string
	onOutcome func(Outcome)
}

// ExecOption configures an Executor
type ExecOption func(*Executor)

// WithTrash moves files to the system trash instead of removing them
func WithTrash() ExecOption {
	return func(e *Executor) {
		e.mode = Trash
	}
}

// WithMoveTo moves files into dir instead of removing them
func WithMoveTo(dir string) ExecOption {
	return func(e *Executor) {
		e.mode = Move
		e.destDir = dir
	}
}

// WithOutcome sets a callback receiving every outcome as it happens
func WithOutcome(fn func(Outcome)) ExecOption {
	return func(e *Executor) {
		e.onOutcome = fn
	}
}

// NewExecutor creates an Executor, removing files permanently by default
func NewExecutor(opts ...ExecOption) *Executor {
	e := &Executor{mode: Remove}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Mode returns the deletion mode in use
func (e *Executor) Mode() Mode {
	return e.mode
}

// Execute acts on every file in order. Each file is checked for existence
// right before acting, and a failure is reported without stopping the
// batch. Cancelling ctx stops after the file in progress.
func (e *Executor) Execute(ctx context.Context, files []media.File) Stats {
	var stats Stats

	for _, f := range files {
		if ctx.Err() != nil {
			stats.Stopped = true
			break
		}

		out := e.apply(f)
		if out.Err != nil {
			stats.Failed++
		} else {
			stats.Done++
			stats.Bytes += f.Size
		}
		if e.onOutcome != nil {
			e.onOutcome(out)
		}
	}

	return stats
}

func (e *Executor) apply(f media.File) Outcome {
	out := Outcome{File: f}

	info, err := os.Lstat(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		out.Err = fmt.Errorf("%s: %w", f.Path, ErrVanished)
		return out
	}
	if err != nil {
		out.Err = fmt.Errorf("failed to stat %s: %w", f.Path, err)
		return out
	}
	if info.IsDir() {
		out.Err = fmt.Errorf("%s is now a directory", f.Path)
		return out
	}

	switch e.mode {
	case Trash:
		err = MoveToTrash(f.Path)
	case Move:
		out.Dest, err = MoveFile(f.Path, e.destDir)
	default:
		err = os.Remove(f.Path)
	}
	if err != nil {
		out.Err = fmt.Errorf("failed to %s %s: %w", e.verb(), f.Path, err)
	}
	return out
}

func (e *Executor) verb() string {
	switch e.mode {
	case Trash:
		return "trash"
	case Move:
		return "move"
	default:
		return "remove"
	}
}
