package models

import (
	"testing"
)

func TestParseGroupType(t *testing.T) {
	tests := []struct {
		input    string
		expected GroupType
		wantErr  bool
	}{
		{"image", ImageFingerprint, false},
		{"Images", ImageFingerprint, false},
		{"image-fingerprint", ImageFingerprint, false},
		{"video", VideoFingerprint, false},
		{" videos ", VideoFingerprint, false},
		{"copy", CopyName, false},
		{"copies", CopyName, false},
		{"cross", CrossType, false},
		{"cross-type", CrossType, false},
		{"audio", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseGroupType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGroupType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseGroupType(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGroupTypes_Labels(t *testing.T) {
	seen := make(map[string]bool)
	for _, gt := range GroupTypes {
		label := gt.Label()
		if label == string(gt) {
			t.Errorf("%s has no label", gt)
		}
		if seen[label] {
			t.Errorf("duplicate label %q", label)
		}
		seen[label] = true
	}
}

func TestDirGroups_CountAndEmpty(t *testing.T) {
	d := &DirGroups{Dir: "/photos"}
	if !d.Empty() {
		t.Error("new DirGroups should be empty")
	}

	d.Copies = []*CopyGroup{{}, {}}
	d.Videos = []*DuplicateGroup{{}}

	tests := []struct {
		typ      GroupType
		expected int
	}{
		{ImageFingerprint, 0},
		{VideoFingerprint, 1},
		{CopyName, 2},
		{CrossType, 0},
		{GroupType("unknown"), 0},
	}
	for _, tt := range tests {
		if got := d.Count(tt.typ); got != tt.expected {
			t.Errorf("Count(%s) = %d, want %d", tt.typ, got, tt.expected)
		}
	}
	if d.Empty() {
		t.Error("DirGroups with groups should not be empty")
	}
}
