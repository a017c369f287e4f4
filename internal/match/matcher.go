package match

import (
	"unicode/utf8"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
	"mediadupfinder/internal/naming"
)

// buildGroups turns key buckets into DuplicateGroups, dropping buckets
// with fewer than two members. Groups follow the order keys were first seen.
func buildGroups[K comparable](typ models.GroupType, order []K, buckets map[K][]media.File, label func(K) string) []*models.DuplicateGroup {
	var groups []*models.DuplicateGroup

	for _, key := range order {
		files := buckets[key]
		if len(files) < 2 {
			continue
		}

		group := &models.DuplicateGroup{
			Type:    typ,
			Key:     label(key),
			Members: files,
		}
		selectKeepAndRemove(group)
		groups = append(groups, group)
	}

	return groups
}

// selectKeepAndRemove determines which member to keep and which to delete
func selectKeepAndRemove(group *models.DuplicateGroup) {
	if len(group.Members) == 0 {
		return
	}
	group.Keep, group.Delete = SelectKeep(group.Members)
}

// SelectKeep picks the file to keep among files and returns the rest in
// input order. Preference goes to names without a copy suffix, then to
// shorter names, then to the earliest modification time. Remaining ties
// keep the file that comes first.
func SelectKeep(files []media.File) (media.File, []media.File) {
	if len(files) == 0 {
		return media.File{}, nil
	}

	best := 0
	for i := 1; i < len(files); i++ {
		if preferred(files[i], files[best]) {
			best = i
		}
	}

	rest := make([]media.File, 0, len(files)-1)
	rest = append(rest, files[:best]...)
	rest = append(rest, files[best+1:]...)
	return files[best], rest
}

// preferred reports whether a strictly outranks b as the file to keep
func preferred(a, b media.File) bool {
	// Primary: no copy suffix
	aCopy, bCopy := naming.IsCopy(a.Name()), naming.IsCopy(b.Name())
	if aCopy != bCopy {
		return !aCopy
	}

	// Secondary: shorter name
	aLen, bLen := utf8.RuneCountInString(a.Name()), utf8.RuneCountInString(b.Name())
	if aLen != bLen {
		return aLen < bLen
	}

	// Tertiary: older file
	return a.ModTime.Before(b.ModTime)
}
