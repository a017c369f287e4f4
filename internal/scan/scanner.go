package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"mediadupfinder/internal/fingerprint"
	"mediadupfinder/internal/match"
	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/plan"
	"mediadupfinder/internal/probe"
)

// ErrNotDirectory is returned when the scan root is not a directory
var ErrNotDirectory = errors.New("not a directory")

// Scanner walks a directory tree and groups likely duplicates directory
// by directory
type Scanner struct {
	classifier *media.Classifier
	prober     probe.Prober
	workers    int
	logger     *slog.Logger
	progressFn func(scanned, total int, current string)
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel fingerprinting workers per directory
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithProber sets the video metadata probe
func WithProber(p probe.Prober) Option {
	return func(s *Scanner) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithExtensions sets the extension table used to classify files
func WithExtensions(exts *media.Extensions) Option {
	return func(s *Scanner) {
		s.classifier = media.NewClassifier(exts)
	}
}

// WithLogger sets the logger receiving per-file and per-directory warnings
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress sets a progress callback, called once per fingerprinted
// file with counts local to the current directory
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		classifier: media.NewClassifier(nil),
		prober:     probe.NewFFProbe(probe.DefaultCommand, probe.DefaultTimeout),
		workers:    1,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanTree visits root and every directory below it depth-first. Only the
// root itself must be readable: directories that cannot be listed are
// reported as warnings and skipped. Cancelling ctx stops the walk between
// directories.
func (s *Scanner) ScanTree(ctx context.Context, root string) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotDirectory)
	}

	result := &Result{Root: abs}

	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			result.add(nil, DirStatus{Dir: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		groups, status, err := s.ScanDir(ctx, path)
		if err != nil {
			s.logger.Warn("skipping directory", "dir", path, "error", err)
			result.add(nil, status)
			// Listing failed, so WalkDir would fail on it as well.
			return fs.SkipDir
		}
		if status.Images.Files+status.Videos.Files > 0 {
			result.add(groups, status)
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", abs, err)
	}

	return result, nil
}

// ScanDir classifies, fingerprints and groups the media directly inside dir.
// A listing failure returns the error with a status recording it.
func (s *Scanner) ScanDir(ctx context.Context, dir string) (*models.DirGroups, DirStatus, error) {
	cls, err := s.classifier.ClassifyDir(dir)
	status := DirStatus{Dir: cls.Dir}
	if err != nil {
		status.Err = err
		return nil, status, err
	}

	status.Images.Files = len(cls.Images)
	status.Videos.Files = len(cls.Videos)
	if cls.Empty() {
		return &models.DirGroups{Dir: cls.Dir}, status, nil
	}

	images, videos := s.fingerprint(ctx, cls)
	status.Unreadable = len(cls.Images) - len(images)
	for _, v := range videos {
		if v.ProbeErr != nil {
			status.Unprobed++
		}
	}

	groups := match.Build(match.Input{
		Dir:    cls.Dir,
		Files:  cls.All(),
		Images: images,
		Videos: videos,
	})

	status.Images.Groups = len(groups.Images)
	status.Videos.Groups = len(groups.Videos)
	for _, g := range groups.Copies {
		if g.Origin.Kind == media.Video {
			status.Videos.Groups++
		} else {
			status.Images.Groups++
		}
	}
	// Cross-type groups span both kinds, so they are counted on their own.
	status.CrossType = len(groups.CrossType)
	for _, c := range plan.Build([]*models.DirGroups{groups}).Candidates {
		if c.File.Kind == media.Video {
			status.Videos.ToDelete++
		} else {
			status.Images.ToDelete++
		}
	}

	return groups, status, nil
}

// fingerprint reads every file of a directory with a bounded worker pool.
// Results keep classification order regardless of which worker finished first.
func (s *Scanner) fingerprint(ctx context.Context, cls media.Classification) ([]fingerprint.Image, []fingerprint.Video) {
	files := append(append([]media.File{}, cls.Images...), cls.Videos...)
	total := len(files)

	var (
		imageResults = make([]*fingerprint.Image, len(cls.Images))
		videoResults = make([]*fingerprint.Video, len(cls.Videos))
		wg           sync.WaitGroup
		scanned      int64
	)

	// Create work channel
	work := make(chan int, total)
	for i := range files {
		work <- i
	}
	close(work)

	workers := min(s.workers, total)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				f := files[idx]
				if f.Kind == media.Image {
					img, err := fingerprint.ReadImage(f)
					if err != nil {
						s.logger.Warn("excluding unreadable image", "path", f.Path, "error", err)
					} else {
						imageResults[idx] = &img
					}
				} else {
					v := fingerprint.ReadVideo(ctx, f, s.prober)
					if v.ProbeErr != nil {
						s.logger.Warn("video metadata unavailable, matching by size only", "path", f.Path, "error", v.ProbeErr)
					}
					videoResults[idx-len(cls.Images)] = &v
				}

				n := atomic.AddInt64(&scanned, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, f.Path)
				}
			}
		}()
	}

	wg.Wait()

	var images []fingerprint.Image
	for _, img := range imageResults {
		if img != nil {
			images = append(images, *img)
		}
	}
	videos := make([]fingerprint.Video, 0, len(videoResults))
	for _, v := range videoResults {
		videos = append(videos, *v)
	}
	return images, videos
}
