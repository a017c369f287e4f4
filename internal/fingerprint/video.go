package fingerprint

import (
	"context"
	"fmt"
	"strconv"

	"mediadupfinder/internal/media"
	"mediadupfinder/internal/probe"
)

const bytesPerMB = 1024 * 1024

// VideoKey is the equivalence key of a video. When metadata is unknown
// only SizeMB takes part, so such videos match other unknown-metadata
// videos of the same size and nothing else.
type VideoKey struct {
	SizeMB    float64
	Known     bool
	Duration  float64
	FrameRate float64
}

func (k VideoKey) String() string {
	return fmt.Sprintf("%.2fMB, %s, %s", k.SizeMB, k.durationString(), k.frameRateString())
}

func (k VideoKey) durationString() string {
	if !k.Known {
		return "unknown duration"
	}
	return fmt.Sprintf("%.2fs", k.Duration)
}

func (k VideoKey) frameRateString() string {
	if !k.Known {
		return "unknown fps"
	}
	return fmt.Sprintf("%.2ffps", k.FrameRate)
}

// Video is a fingerprinted video file
type Video struct {
	File     media.File
	Key      VideoKey
	ProbeErr error // non-nil when the key fell back to size only
}

// Describe returns a one-line human readable summary
func (v Video) Describe() string {
	return "video " + v.Key.String()
}

// ReadVideo fingerprints one video. It never fails: when the probe
// errors the key degrades to size only and ProbeErr records why.
func ReadVideo(ctx context.Context, f media.File, p probe.Prober) Video {
	v := Video{
		File: f,
		Key:  VideoKey{SizeMB: SizeMB(f.Size)},
	}

	info, err := p.Probe(ctx, f.Path)
	if err != nil {
		v.ProbeErr = err
		return v
	}

	v.Key.Known = true
	v.Key.Duration = Round2(info.Duration)
	v.Key.FrameRate = Round2(info.FrameRate)
	return v
}

// SizeMB converts a byte count to mebibytes rounded to two decimals
func SizeMB(size int64) float64 {
	return Round2(float64(size) / bytesPerMB)
}

// Round2 rounds to two decimal places using the shortest correctly
// rounded decimal representation, so equal inputs always map to the
// same key.
func Round2(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return v
}
