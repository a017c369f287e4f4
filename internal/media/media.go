package media

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind is the media category of a classified file
type Kind int

const (
	Image Kind = iota + 1
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// File holds the stat information of a classified media file.
// Files are created by a Classifier and never modified afterwards.
type File struct {
	Path    string    `json:"path"`
	Kind    Kind      `json:"kind"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Name returns the base name of the file, extension included
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Ext returns the extension as it appears on disk (case preserved)
func (f File) Ext() string {
	return filepath.Ext(f.Path)
}

// Stem returns the file name without its extension
func (f File) Stem() string {
	return Stem(f.Name())
}

// Dir returns the directory containing the file
func (f File) Dir() string {
	return filepath.Dir(f.Path)
}

// Stem strips the last extension from a file name
func Stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// DefaultImageExtensions lists the image formats recognized out of the box
var DefaultImageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"}

// DefaultVideoExtensions lists the video formats recognized out of the box
var DefaultVideoExtensions = []string{"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm"}

// Extensions maps lower-cased extensions to a Kind
type Extensions struct {
	kinds map[string]Kind
}

// NewExtensions builds an extension table. Entries may be given with or
// without the leading dot and in any case. An extension listed as both
// image and video is treated as an image.
func NewExtensions(images, videos []string) *Extensions {
	e := &Extensions{kinds: make(map[string]Kind, len(images)+len(videos))}
	for _, ext := range videos {
		if ext = normalizeExt(ext); ext != "" {
			e.kinds[ext] = Video
		}
	}
	for _, ext := range images {
		if ext = normalizeExt(ext); ext != "" {
			e.kinds[ext] = Image
		}
	}
	return e
}

// DefaultExtensions returns the built-in extension table
func DefaultExtensions() *Extensions {
	return NewExtensions(DefaultImageExtensions, DefaultVideoExtensions)
}

// KindOf classifies a path by its extension
func (e *Extensions) KindOf(path string) (Kind, bool) {
	k, ok := e.kinds[normalizeExt(filepath.Ext(path))]
	return k, ok
}

// IsMedia reports whether the path has a recognized image or video extension
func (e *Extensions) IsMedia(path string) bool {
	_, ok := e.KindOf(path)
	return ok
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
