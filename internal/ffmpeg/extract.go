package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emigr8/clipforge/pkg/util"
)

// ExtractClip cuts a segment from a video. With CopyCodec the cut is a
// fast stream copy aligned to keyframes; otherwise it re-encodes with
// the default quality settings for frame-exact boundaries.
func (e *Executor) ExtractClip(ctx context.Context, input string, opts ClipOptions) error {
	duration := opts.End - opts.Start
	if duration <= 0 {
		return fmt.Errorf("invalid clip duration: end must be after start")
	}

	e.logger.Info().
		Str("input", input).
		Str("output", opts.Output).
		Dur("start", opts.Start).
		Dur("duration", duration).
		Bool("copy_codec", opts.CopyCodec).
		Msg("extracting clip")

	args := []string{
		"-i", input,
		"-ss", util.FormatDuration(opts.Start),
		"-t", util.FormatDuration(duration),
	}

	if opts.CopyCodec {
		args = append(args, "-c", "copy")
	} else {
		args = append(args,
			"-c:v", DefaultVideoCodec,
			"-preset", DefaultPreset,
			"-crf", strconv.Itoa(DefaultCRF),
			"-c:a", "aac",
		)
	}

	args = append(args, opts.Output)

	runOpts := RunOptions{
		Args:            args,
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("clip extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}
	return nil
}
