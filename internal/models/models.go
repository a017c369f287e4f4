package models

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"mediadupfinder/internal/media"
)

// GroupType names the rule that produced a duplicate group
type GroupType string

const (
	ImageFingerprint GroupType = "image-fingerprint"
	VideoFingerprint GroupType = "video-fingerprint"
	CopyName         GroupType = "copy"
	CrossType        GroupType = "cross-type"
)

// GroupTypes lists every group type in presentation order
var GroupTypes = []GroupType{ImageFingerprint, CopyName, CrossType, VideoFingerprint}

// Label returns the heading used for the group type in reports and prompts
func (t GroupType) Label() string {
	switch t {
	case ImageFingerprint:
		return "Duplicate images (same size and resolution)"
	case VideoFingerprint:
		return "Duplicate videos (same size, duration and frame rate)"
	case CopyName:
		return "Numbered copies"
	case CrossType:
		return "Images sharing a name with a video"
	default:
		return string(t)
	}
}

// ParseGroupType accepts a group type name or one of its short aliases
func ParseGroupType(s string) (GroupType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "image-fingerprint", "image", "images":
		return ImageFingerprint, nil
	case "video-fingerprint", "video", "videos":
		return VideoFingerprint, nil
	case "copy", "copies":
		return CopyName, nil
	case "cross-type", "crosstype", "cross":
		return CrossType, nil
	}
	return "", fmt.Errorf("unknown group type %q", s)
}

// DuplicateGroup is a set of files sharing one fingerprint key
type DuplicateGroup struct {
	Type    GroupType    `json:"type"`
	Key     string       `json:"key"`
	Members []media.File `json:"members"`
	Keep    media.File   `json:"keep"`   // Member retained
	Delete  []media.File `json:"delete"` // Every other member
}

// CopyGroup is an origin file and its numbered copies
type CopyGroup struct {
	Origin media.File   `json:"origin"`
	Copies []media.File `json:"copies"`
}

// CrossTypeGroup is a stem shared by at least one video and one image.
// Videos are kept and images are delete candidates.
type CrossTypeGroup struct {
	Stem   string       `json:"stem"`
	Videos []media.File `json:"videos"`
	Images []media.File `json:"images"`
}

// DirGroups holds every group found in one directory
type DirGroups struct {
	Dir       string            `json:"dir"`
	Images    []*DuplicateGroup `json:"images,omitempty"`
	Videos    []*DuplicateGroup `json:"videos,omitempty"`
	Copies    []*CopyGroup      `json:"copies,omitempty"`
	CrossType []*CrossTypeGroup `json:"cross_type,omitempty"`

	// Details maps a file path to its one-line descriptor
	Details map[string]string `json:"-"`
}

// Count returns the number of groups of the given type
func (d *DirGroups) Count(t GroupType) int {
	switch t {
	case ImageFingerprint:
		return len(d.Images)
	case VideoFingerprint:
		return len(d.Videos)
	case CopyName:
		return len(d.Copies)
	case CrossType:
		return len(d.CrossType)
	}
	return 0
}

// Empty reports whether no group of any type was found
func (d *DirGroups) Empty() bool {
	for _, t := range GroupTypes {
		if d.Count(t) > 0 {
			return false
		}
	}
	return true
}

// Describe returns the descriptor recorded for f, falling back to kind and size
func (d *DirGroups) Describe(f media.File) string {
	if desc, ok := d.Details[f.Path]; ok {
		return desc
	}
	return fmt.Sprintf("%s %s", f.Kind, humanize.IBytes(uint64(f.Size)))
}
