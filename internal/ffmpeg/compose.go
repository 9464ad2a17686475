package ffmpeg

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emigr8/clipforge/internal/filtergraph"
)

// Compose runs the two-input vertical composition render: the clip and
// the overlay template go through the filter graph, the designated
// final stream becomes the video output, and source audio (if any) is
// stream-copied alongside it.
func (e *Executor) Compose(ctx context.Context, opts ComposeOptions) error {
	if err := validateComposeOptions(opts); err != nil {
		return fmt.Errorf("invalid compose options: %w", err)
	}

	e.logger.Info().
		Str("input", opts.Input).
		Str("overlay", opts.OverlayImage).
		Str("output", opts.Output).
		Msg("starting composition render")

	runOpts := RunOptions{
		Args:            composeArgs(opts),
		ProgressHandler: opts.ProgressFunc,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("compose output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("composition render failed: %w", err)
	}

	e.logger.Info().Str("output", opts.Output).Msg("composition render completed")
	return nil
}

// composeArgs builds the argument list for a composition render. The
// `0:a?` map keeps audio passthrough optional: a silent source is not
// an error.
func composeArgs(opts ComposeOptions) []string {
	finalLabel := opts.FinalLabel
	if finalLabel == "" {
		finalLabel = filtergraph.FinalLabel
	}
	codec := opts.VideoCodec
	if codec == "" {
		codec = DefaultVideoCodec
	}
	preset := opts.Preset
	if preset == "" {
		preset = DefaultPreset
	}
	crf := opts.CRF
	if crf == 0 {
		crf = DefaultCRF
	}

	return []string{
		"-i", opts.Input,
		"-i", opts.OverlayImage,
		"-filter_complex", opts.FilterGraph,
		"-map", "[" + finalLabel + "]",
		"-map", "0:a?",
		"-c:v", codec,
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-c:a", "copy",
		opts.Output,
	}
}

func validateComposeOptions(opts ComposeOptions) error {
	if opts.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if opts.OverlayImage == "" {
		return fmt.Errorf("overlay image path is required")
	}
	if opts.Output == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.FilterGraph == "" {
		return fmt.Errorf("filter graph is required")
	}
	if opts.CRF < 0 || opts.CRF > 51 {
		return fmt.Errorf("CRF must be between 0 and 51")
	}
	return nil
}

// Burn renders input with the subtitle track burned in and audio
// stream-copied. Used by the caption stage; the vertical composition
// burns captions through its filter graph instead.
func (e *Executor) Burn(ctx context.Context, input, subtitlePath, output string) error {
	if input == "" || subtitlePath == "" || output == "" {
		return fmt.Errorf("input, subtitle, and output paths are required")
	}

	e.logger.Info().
		Str("input", input).
		Str("subtitles", subtitlePath).
		Str("output", output).
		Msg("burning subtitles")

	args := []string{
		"-i", input,
		"-vf", fmt.Sprintf("subtitles='%s'", filtergraph.EscapeSubtitlePath(subtitlePath)),
		"-c:v", DefaultVideoCodec,
		"-preset", DefaultPreset,
		"-crf", strconv.Itoa(DefaultCRF),
		"-c:a", "copy",
		output,
	}

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("burn output")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("subtitle burn failed: %w", err)
	}
	return nil
}
