package match

import (
	"mediadupfinder/internal/fingerprint"
	"mediadupfinder/internal/media"
	"mediadupfinder/internal/models"
)

// ImageMatcher groups images with identical size and resolution
type ImageMatcher struct{}

// NewImageMatcher creates a new ImageMatcher
func NewImageMatcher() *ImageMatcher {
	return &ImageMatcher{}
}

// FindGroups finds groups of images sharing one fingerprint key
func (m *ImageMatcher) FindGroups(images []fingerprint.Image) []*models.DuplicateGroup {
	if len(images) < 2 {
		return nil
	}

	var order []fingerprint.ImageKey
	buckets := make(map[fingerprint.ImageKey][]media.File)
	for _, img := range images {
		if _, ok := buckets[img.Key]; !ok {
			order = append(order, img.Key)
		}
		buckets[img.Key] = append(buckets[img.Key], img.File)
	}

	return buildGroups(models.ImageFingerprint, order, buckets, fingerprint.ImageKey.String)
}

// VideoMatcher groups videos with identical size, duration and frame rate.
// Videos whose metadata could not be read only match each other by size.
type VideoMatcher struct{}

// NewVideoMatcher creates a new VideoMatcher
func NewVideoMatcher() *VideoMatcher {
	return &VideoMatcher{}
}

// FindGroups finds groups of videos sharing one fingerprint key
func (m *VideoMatcher) FindGroups(videos []fingerprint.Video) []*models.DuplicateGroup {
	if len(videos) < 2 {
		return nil
	}

	var order []fingerprint.VideoKey
	buckets := make(map[fingerprint.VideoKey][]media.File)
	for _, v := range videos {
		if _, ok := buckets[v.Key]; !ok {
			order = append(order, v.Key)
		}
		buckets[v.Key] = append(buckets[v.Key], v.File)
	}

	return buildGroups(models.VideoFingerprint, order, buckets, fingerprint.VideoKey.String)
}
