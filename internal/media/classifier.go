package media

import (
	"fmt"
	"os"
	"path/filepath"
)

// Classification is the media content of a single directory
type Classification struct {
	Dir    string
	Images []File
	Videos []File
}

// Empty reports whether the directory holds no media at all
func (c Classification) Empty() bool {
	return len(c.Images) == 0 && len(c.Videos) == 0
}

// All returns images and videos merged back into directory listing order
func (c Classification) All() []File {
	all := make([]File, 0, len(c.Images)+len(c.Videos))
	i, j := 0, 0
	for i < len(c.Images) && j < len(c.Videos) {
		if c.Images[i].Name() <= c.Videos[j].Name() {
			all = append(all, c.Images[i])
			i++
		} else {
			all = append(all, c.Videos[j])
			j++
		}
	}
	all = append(all, c.Images[i:]...)
	return append(all, c.Videos[j:]...)
}

// Classifier partitions directory entries into images and videos
type Classifier struct {
	exts *Extensions
}

// NewClassifier creates a Classifier. A nil table selects the defaults.
func NewClassifier(exts *Extensions) *Classifier {
	if exts == nil {
		exts = DefaultExtensions()
	}
	return &Classifier{exts: exts}
}

// Extensions returns the extension table in use
func (c *Classifier) Extensions() *Extensions {
	return c.exts
}

// ClassifyDir lists the direct file entries of dir (no recursion) and
// sorts them into images and videos by extension.
//
// If the directory cannot be listed an empty Classification is returned
// together with the error, so callers can warn and move on. Entries that
// disappear between listing and stat are dropped silently.
func (c *Classifier) ClassifyDir(dir string) (Classification, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Classification{Dir: dir}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	result := Classification{Dir: abs}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return result, fmt.Errorf("failed to list %s: %w", abs, err)
	}

	// os.ReadDir returns entries sorted by name, so both slices stay sorted.
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind, ok := c.exts.KindOf(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(abs, entry.Name())
		// Stat (not Lstat) so symlinks to regular files count, like a plain isfile check.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		f := File{
			Path:    path,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if kind == Image {
			result.Images = append(result.Images, f)
		} else {
			result.Videos = append(result.Videos, f)
		}
	}

	return result, nil
}
