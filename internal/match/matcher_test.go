package match

import (
	"testing"
	"time"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
)

func img(name string, size int64, mod time.Time) media.File {
	return media.File{Path: "/photos/" + name, Kind: media.Image, Size: size, ModTime: mod}
}

func vid(name string, size int64, mod time.Time) media.File {
	return media.File{Path: "/photos/" + name, Kind: media.Video, Size: size, ModTime: mod}
}

func TestSelectKeep(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		files        []media.File
		expectedKeep string
	}{
		{
			name: "prefer name without copy suffix",
			files: []media.File{
				img("img (1).jpg", 100, now.Add(-time.Hour)),
				img("img.jpg", 100, now),
			},
			expectedKeep: "img.jpg",
		},
		{
			name: "prefer shorter name",
			files: []media.File{
				vid("clip_copy.mp4", 100, now.Add(-time.Hour)),
				vid("clip.mp4", 100, now),
			},
			expectedKeep: "clip.mp4",
		},
		{
			name: "name length counts characters not bytes",
			files: []media.File{
				img("abcd.jpg", 100, now),
				img("日本.jpg", 100, now),
			},
			expectedKeep: "日本.jpg",
		},
		{
			name: "equal names keep older",
			files: []media.File{
				img("b.jpg", 100, now),
				img("a.jpg", 100, now.Add(-time.Hour)),
			},
			expectedKeep: "a.jpg",
		},
		{
			name: "full tie keeps first",
			files: []media.File{
				img("b.jpg", 100, now),
				img("a.jpg", 100, now),
			},
			expectedKeep: "b.jpg",
		},
		{
			name: "full-width suffix counts as copy",
			files: []media.File{
				img("a（2）.jpg", 100, now.Add(-time.Hour)),
				img("longer.jpg", 100, now),
			},
			expectedKeep: "longer.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keep, rest := SelectKeep(tt.files)
			if keep.Name() != tt.expectedKeep {
				t.Errorf("expected to keep %s, got %s", tt.expectedKeep, keep.Name())
			}
			if len(rest) != len(tt.files)-1 {
				t.Fatalf("expected %d to delete, got %d", len(tt.files)-1, len(rest))
			}
			for _, f := range rest {
				if f.Path == keep.Path {
					t.Errorf("kept file %s also marked for deletion", keep.Path)
				}
			}
		})
	}
}

func TestSelectKeep_Empty(t *testing.T) {
	keep, rest := SelectKeep(nil)
	if keep.Path != "" || rest != nil {
		t.Errorf("expected zero result, got %v %v", keep, rest)
	}
}

func TestSelectKeep_DeleteKeepsInputOrder(t *testing.T) {
	now := time.Now()
	files := []media.File{
		img("c (1).jpg", 1, now),
		img("a (2).jpg", 1, now),
		img("a.jpg", 1, now),
		img("b (3).jpg", 1, now),
	}

	keep, rest := SelectKeep(files)
	if keep.Name() != "a.jpg" {
		t.Fatalf("keep = %s", keep.Name())
	}
	want := []string{"c (1).jpg", "a (2).jpg", "b (3).jpg"}
	for i, f := range rest {
		if f.Name() != want[i] {
			t.Errorf("rest[%d] = %s, want %s", i, f.Name(), want[i])
		}
	}
}

func TestBuildGroups(t *testing.T) {
	now := time.Now()
	a := img("a.jpg", 1, now)
	b := img("a (1).jpg", 1, now)
	c := img("c.jpg", 2, now)

	order := []string{"single", "pair"}
	buckets := map[string][]media.File{
		"pair":   {b, a},
		"single": {c},
	}

	groups := buildGroups(models.ImageFingerprint, order, buckets, func(s string) string { return s })
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Key != "pair" || g.Type != models.ImageFingerprint {
		t.Errorf("group = %+v", g)
	}
	if g.Keep.Path != a.Path {
		t.Errorf("expected %s to be kept, got %s", a.Path, g.Keep.Path)
	}
	if len(g.Delete) != 1 || g.Delete[0].Path != b.Path {
		t.Errorf("delete = %v", g.Delete)
	}
}
