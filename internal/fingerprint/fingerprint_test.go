package fingerprint

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/probe"
)

func writePNG(t *testing.T, path string, w, h int) media.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write png: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return media.File{Path: path, Kind: media.Image, Size: info.Size(), ModTime: info.ModTime()}
}

func TestReadImage(t *testing.T) {
	f := writePNG(t, filepath.Join(t.TempDir(), "a.png"), 8, 5)

	img, err := ReadImage(f)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if img.Key.Width != 8 || img.Key.Height != 5 {
		t.Errorf("dimensions = %dx%d, want 8x5", img.Key.Width, img.Key.Height)
	}
	if img.Key.Size != f.Size {
		t.Errorf("size = %d, want %d", img.Key.Size, f.Size)
	}
	if img.Format != "png" {
		t.Errorf("format = %q, want png", img.Format)
	}
	if img.HasExif {
		t.Error("generated png should not carry exif")
	}
	if !strings.Contains(img.Describe(), "8x5") {
		t.Errorf("Describe() = %q", img.Describe())
	}
}

func TestReadImage_SameContentSameKey(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	b := writePNG(t, filepath.Join(dir, "b (1).png"), 4, 4)

	ia, err := ReadImage(a)
	if err != nil {
		t.Fatal(err)
	}
	ib, err := ReadImage(b)
	if err != nil {
		t.Fatal(err)
	}
	if ia.Key != ib.Key {
		t.Errorf("keys differ: %v vs %v", ia.Key, ib.Key)
	}
}

func TestReadImage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("definitely not a jpeg"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadImage(media.File{Path: path, Kind: media.Image})
	if err == nil {
		t.Error("expected decode error")
	}
}

func TestReadImage_Missing(t *testing.T) {
	_, err := ReadImage(media.File{Path: filepath.Join(t.TempDir(), "gone.png")})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{1.234, 1.23},
		{1.236, 1.24},
		{29.97002997, 29.97},
		{100, 100},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.expected {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestSizeMB(t *testing.T) {
	tests := []struct {
		size     int64
		expected float64
	}{
		{0, 0},
		{1048576, 1},
		{1572864, 1.5},
		{100000, 0.1},
		{5000, 0},
	}

	for _, tt := range tests {
		if got := SizeMB(tt.size); got != tt.expected {
			t.Errorf("SizeMB(%d) = %v, want %v", tt.size, got, tt.expected)
		}
	}
}

func TestReadVideo(t *testing.T) {
	f := media.File{Path: "/videos/clip.mp4", Kind: media.Video, Size: 3 * 1048576, ModTime: time.Now()}
	p := probe.ProberFunc(func(ctx context.Context, path string) (probe.Info, error) {
		return probe.Info{Duration: 12.3456, FrameRate: 30000.0 / 1001.0}, nil
	})

	v := ReadVideo(context.Background(), f, p)
	if v.ProbeErr != nil {
		t.Fatalf("unexpected probe error: %v", v.ProbeErr)
	}
	want := VideoKey{SizeMB: 3, Known: true, Duration: 12.35, FrameRate: 29.97}
	if v.Key != want {
		t.Errorf("key = %+v, want %+v", v.Key, want)
	}
	if v.Describe() != "video 3.00MB, 12.35s, 29.97fps" {
		t.Errorf("Describe() = %q", v.Describe())
	}
}

func TestReadVideo_ProbeFailureFallsBackToSize(t *testing.T) {
	f := media.File{Path: "/videos/clip.mp4", Kind: media.Video, Size: 1048576}
	p := probe.ProberFunc(func(ctx context.Context, path string) (probe.Info, error) {
		return probe.Info{}, probe.ErrTimeout
	})

	v := ReadVideo(context.Background(), f, p)
	if !errors.Is(v.ProbeErr, probe.ErrTimeout) {
		t.Errorf("ProbeErr = %v", v.ProbeErr)
	}
	want := VideoKey{SizeMB: 1}
	if v.Key != want {
		t.Errorf("key = %+v, want %+v", v.Key, want)
	}
	if !strings.Contains(v.Describe(), "unknown") {
		t.Errorf("Describe() = %q", v.Describe())
	}
}

func TestVideoKey_UnknownNeverEqualsKnown(t *testing.T) {
	unknown := VideoKey{SizeMB: 2}
	// A successful probe reporting zero duration and zero fps still differs.
	zero := VideoKey{SizeMB: 2, Known: true}
	if unknown == zero {
		t.Error("unknown-metadata key must not equal a known key")
	}
}
