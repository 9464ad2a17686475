// Package clips covers the clip-selection stage: an external
// boundary-finding capability proposes time ranges, and the cutter
// stream-copies each range into a numbered clip file.
package clips

import (
	"context"
	"time"
)

// Clip is one proposed segment of the source video, in seconds.
type Clip struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the clip length.
func (c Clip) Duration() time.Duration {
	return time.Duration((c.End - c.Start) * float64(time.Second))
}

// Finder is the external clip-boundary capability (speech transcription
// plus topic segmentation). Implementations return boundaries in
// playback order.
type Finder interface {
	Find(ctx context.Context, sourcePath string) ([]Clip, error)
}
