package match

import (
	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/naming"
)

// FindCopyGroups pairs each numbered copy with its origin. The origin must
// be one of files and share the copy's extension; copies without an origin
// are ignored. Groups follow the order their first copy appears in files.
func FindCopyGroups(files []media.File) []*models.CopyGroup {
	byName := make(map[string]media.File, len(files))
	for _, f := range files {
		byName[f.Name()] = f
	}

	var groups []*models.CopyGroup
	byOrigin := make(map[string]*models.CopyGroup)

	for _, f := range files {
		cn, ok := naming.ParseCopyName(f.Stem())
		if !ok {
			continue
		}

		origin, found := lookupOrigin(byName, cn.OriginNames(f.Ext()))
		if !found || origin.Path == f.Path {
			continue
		}

		group, ok := byOrigin[origin.Path]
		if !ok {
			group = &models.CopyGroup{Origin: origin}
			byOrigin[origin.Path] = group
			groups = append(groups, group)
		}
		group.Copies = append(group.Copies, f)
	}

	return groups
}

func lookupOrigin(byName map[string]media.File, names []string) (media.File, bool) {
	for _, name := range names {
		if f, ok := byName[name]; ok {
			return f, true
		}
	}
	return media.File{}, false
}

// FindCrossTypeGroups returns the stems shared by a video and an image
func FindCrossTypeGroups(files []media.File) []*models.CrossTypeGroup {
	var groups []*models.CrossTypeGroup
	for _, p := range naming.CrossTypePairs(files) {
		groups = append(groups, &models.CrossTypeGroup{
			Stem:   p.Stem,
			Videos: p.Videos,
			Images: p.Images,
		})
	}
	return groups
}
