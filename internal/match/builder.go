package match

import (
	"mediadupfinder/internal/fingerprint"
	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
)

// Input is everything known about one directory after fingerprinting
type Input struct {
	Dir    string
	Files  []media.File // every classified file, fingerprinted or not
	Images []fingerprint.Image
	Videos []fingerprint.Video
}

// Build runs every matcher over one directory. The four group types are
// computed independently, so a file may appear in more than one of them.
func Build(in Input) *models.DirGroups {
	groups := &models.DirGroups{
		Dir:       in.Dir,
		Images:    NewImageMatcher().FindGroups(in.Images),
		Videos:    NewVideoMatcher().FindGroups(in.Videos),
		Copies:    FindCopyGroups(in.Files),
		CrossType: FindCrossTypeGroups(in.Files),
		Details:   make(map[string]string, len(in.Images)+len(in.Videos)),
	}

	for _, img := range in.Images {
		groups.Details[img.File.Path] = img.Describe()
	}
	for _, v := range in.Videos {
		groups.Details[v.File.Path] = v.Describe()
	}

	return groups
}
