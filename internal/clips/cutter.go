package clips

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/ffmpeg"
	"github.com/emigr8/clipforge/pkg/util"
)

// Extractor cuts a time range out of a source video. Satisfied by
// *ffmpeg.Executor.
type Extractor interface {
	ExtractClip(ctx context.Context, input string, opts ffmpeg.ClipOptions) error
}

// Cutter writes clip_<n>.mp4 files for a set of proposed boundaries.
type Cutter struct {
	logger    zerolog.Logger
	extractor Extractor
}

// NewCutter creates a cutter.
func NewCutter(logger zerolog.Logger, extractor Extractor) *Cutter {
	return &Cutter{
		logger:    logger.With().Str("component", "cutter").Logger(),
		extractor: extractor,
	}
}

// Cut stream-copies each clip out of source into outDir, replacing any
// clips from a previous run. Returns the written paths in clip order.
func (c *Cutter) Cut(ctx context.Context, source, outDir string, found []Clip) ([]string, error) {
	if len(found) == 0 {
		return nil, fmt.Errorf("no clips to cut")
	}
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("ensure clips dir: %w", err)
	}

	if removed := util.CleanupGlob(filepath.Join(outDir, "clip_*.mp4")); removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("cleared clips from previous run")
	}

	var outputs []string
	for _, clip := range found {
		output := filepath.Join(outDir, OutputName(clip.Index))

		c.logger.Info().
			Int("clip", clip.Index).
			Float64("start", clip.Start).
			Float64("end", clip.End).
			Str("output", output).
			Msg("saving clip")

		err := c.extractor.ExtractClip(ctx, source, ffmpeg.ClipOptions{
			Start:     time.Duration(clip.Start * float64(time.Second)),
			End:       time.Duration(clip.End * float64(time.Second)),
			Output:    output,
			CopyCodec: true,
		})
		if err != nil {
			return outputs, fmt.Errorf("cut clip %d: %w", clip.Index, err)
		}
		outputs = append(outputs, output)
	}

	return outputs, nil
}

// OutputName returns the filename for a clip index.
func OutputName(index int) string {
	return fmt.Sprintf("clip_%d.mp4", index)
}
