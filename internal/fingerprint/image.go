package fingerprint

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"mediadupfinder/internal/media"
)

// ImageKey is the equivalence key of an image: byte size plus pixel dimensions
type ImageKey struct {
	Size   int64
	Width  int
	Height int
}

func (k ImageKey) String() string {
	return fmt.Sprintf("%d bytes, %dx%d", k.Size, k.Width, k.Height)
}

// Image is a fingerprinted image file
type Image struct {
	File    media.File
	Key     ImageKey
	Format  string
	HasExif bool
}

// Describe returns a one-line human readable summary
func (img Image) Describe() string {
	s := fmt.Sprintf("image %dx%d %s, %s", img.Key.Width, img.Key.Height, img.Format, humanize.IBytes(uint64(img.Key.Size)))
	if img.HasExif {
		s += ", exif"
	}
	return s
}

// ReadImage fingerprints one image. Only the header is decoded.
func ReadImage(f media.File) (Image, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return Image{}, fmt.Errorf("failed to stat image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	return Image{
		File: f,
		Key: ImageKey{
			Size:   stat.Size(),
			Width:  cfg.Width,
			Height: cfg.Height,
		},
		Format:  format,
		HasExif: checkExif(f.Path),
	}, nil
}

// checkExif checks if an image file contains EXIF data
func checkExif(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}
