// Package compose drives the batch vertical composition: for every clip
// in a directory it resolves a foreground crop, locates captions,
// synthesizes the filter graph, and renders the final 9:16 video.
package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/ffmpeg"
	"github.com/emigr8/clipforge/internal/filtergraph"
	"github.com/emigr8/clipforge/internal/geometry"
	"github.com/emigr8/clipforge/pkg/util"
)

// CropResolver produces the expanded subject crop for a clip, or nil
// when the centered fallback should be used. Satisfied by
// *detect.Resolver.
type CropResolver interface {
	Resolve(ctx context.Context, clipPath string) *geometry.Rect
}

// SubtitleLocator resolves the caption track for a clip, or "" for
// none. Satisfied by *subtitle.Locator.
type SubtitleLocator interface {
	Locate(clipPath string) string
}

// Renderer executes the two-input composition render. Satisfied by
// *ffmpeg.Executor.
type Renderer interface {
	Compose(ctx context.Context, opts ffmpeg.ComposeOptions) error
}

// Options configures one batch run.
type Options struct {
	ClipsDir     string
	OutDir       string
	OverlayImage string
	CanvasWidth  int
	CanvasHeight int
	CaptionFont  string // libass font name; empty uses the default

	VideoCodec string
	Preset     string
	CRF        int
}

// Composer renders every clip in a directory onto the vertical canvas.
type Composer struct {
	logger   zerolog.Logger
	renderer Renderer
	resolver CropResolver
	locator  SubtitleLocator
	opts     Options
}

// New creates a composer. resolver may be nil to always use the
// centered fallback; locator may be nil to never burn captions.
func New(logger zerolog.Logger, renderer Renderer, resolver CropResolver, locator SubtitleLocator, opts Options) *Composer {
	return &Composer{
		logger:   logger.With().Str("component", "compose").Logger(),
		renderer: renderer,
		resolver: resolver,
		locator:  locator,
		opts:     opts,
	}
}

// Run composes every clip_*.mp4 under ClipsDir. Setup problems that
// would fail every clip abort the run; per-clip failures are recorded
// in the report and the batch continues.
func (c *Composer) Run(ctx context.Context) (*Report, error) {
	if err := c.preflight(); err != nil {
		return nil, err
	}

	clips, err := filepath.Glob(filepath.Join(c.opts.ClipsDir, "clip_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("scan clips dir: %w", err)
	}
	sort.Strings(clips)

	report := newReport()
	if len(clips) == 0 {
		c.logger.Warn().Str("dir", c.opts.ClipsDir).Msg("no clips to compose")
		return report, nil
	}

	if err := util.EnsureDir(c.opts.OutDir); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	style := filtergraph.CaptionStyle(c.opts.CaptionFont)

	for _, clip := range clips {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.add(c.composeOne(ctx, clip, style))
	}

	c.logger.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Str("run_id", report.RunID.String()).
		Msg("composition batch finished")
	return report, nil
}

func (c *Composer) preflight() error {
	if c.opts.CanvasWidth <= 0 || c.opts.CanvasHeight <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", c.opts.CanvasWidth, c.opts.CanvasHeight)
	}
	if c.opts.OverlayImage == "" || !util.FileExists(c.opts.OverlayImage) {
		return fmt.Errorf("overlay template not found: %s", c.opts.OverlayImage)
	}
	return nil
}

func (c *Composer) composeOne(ctx context.Context, clip, style string) Result {
	start := time.Now()
	result := Result{
		Clip:   clip,
		Output: filepath.Join(c.opts.OutDir, OutputName(clip)),
	}

	var crop *geometry.Rect
	if c.resolver != nil {
		crop = c.resolver.Resolve(ctx, clip)
	}
	result.Detected = crop != nil

	var subtitlePath string
	if c.locator != nil {
		subtitlePath = c.locator.Locate(clip)
	}
	result.Subtitled = subtitlePath != ""

	graph := filtergraph.Build(crop, c.opts.CanvasWidth, c.opts.CanvasHeight, subtitlePath, style)
	if err := graph.Validate(); err != nil {
		result.Err = err
		result.Elapsed = time.Since(start)
		return result
	}

	c.logger.Info().
		Str("clip", filepath.Base(clip)).
		Bool("detected_crop", result.Detected).
		Bool("captions", result.Subtitled).
		Msg("composing clip")

	err := c.renderer.Compose(ctx, ffmpeg.ComposeOptions{
		Input:        clip,
		OverlayImage: c.opts.OverlayImage,
		Output:       result.Output,
		FilterGraph:  graph.String(),
		FinalLabel:   filtergraph.FinalLabel,
		VideoCodec:   c.opts.VideoCodec,
		Preset:       c.opts.Preset,
		CRF:          c.opts.CRF,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("clip", filepath.Base(clip)).Msg("compose failed; continuing with remaining clips")
		result.Err = err
	}

	result.Elapsed = time.Since(start)
	return result
}

// OutputName derives the rendered filename from a clip path. Any
// "_subtitled" marker from the caption stage is dropped so the final
// name reflects the original clip.
func OutputName(clipPath string) string {
	stem := strings.ReplaceAll(util.Stem(clipPath), "_subtitled", "")
	return stem + "_vertical.mp4"
}
