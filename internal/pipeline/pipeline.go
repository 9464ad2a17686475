// Package pipeline orchestrates the full workflow: fetch a source
// video, cut clips, generate subtitles, and compose vertical renders.
// Each stage is independently callable so the CLI and the HTTP API can
// run them separately or end to end.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/clips"
	"github.com/emigr8/clipforge/internal/compose"
	"github.com/emigr8/clipforge/internal/config"
	"github.com/emigr8/clipforge/internal/detect"
	"github.com/emigr8/clipforge/internal/fetch"
	"github.com/emigr8/clipforge/internal/ffmpeg"
	"github.com/emigr8/clipforge/internal/subtitle"
)

// Pipeline wires the stage implementations around one configuration.
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	ffmpeg *ffmpeg.Executor
}

// New creates a pipeline instance.
func New(logger zerolog.Logger, cfg *config.Config) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, fmt.Errorf("initialize ffmpeg: %w", err)
	}

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		ffmpeg: exec,
	}, nil
}

// FetchVideo downloads the source video into the videos directory and
// returns its path.
func (p *Pipeline) FetchVideo(ctx context.Context, url string) (string, error) {
	fetcher := fetch.New(p.logger, p.cfg.Fetch.BinaryPath, p.cfg.Fetch.Cookies)
	return fetcher.Download(ctx, url, p.cfg.VideosDir)
}

// CutClips finds clip boundaries in the source video and cuts them into
// the clips directory. Returns the cut clip paths in order.
func (p *Pipeline) CutClips(ctx context.Context, source string) ([]string, error) {
	finder := clips.NewCommandFinder(p.logger, p.cfg.ClipFind.Command)
	found, err := finder.Find(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("find clips: %w", err)
	}

	cutter := clips.NewCutter(p.logger, p.ffmpeg)
	return cutter.Cut(ctx, source, p.cfg.ClipsDir, found)
}

// GenerateSubtitles transcribes every clip and burns the captions,
// writing subtitled intermediates next to their SRT tracks.
func (p *Pipeline) GenerateSubtitles(ctx context.Context) ([]string, error) {
	transcriber := subtitle.NewWhisperCommand(p.logger, p.cfg.Whisper.BinaryPath, p.cfg.Whisper.Model)
	stage := subtitle.NewStage(p.logger, transcriber, p.ffmpeg)
	return stage.Run(ctx, p.cfg.ClipsDir, p.cfg.SubtitledDir)
}

// ComposeRequest carries per-run overrides for the composition stage.
// Zero values fall back to configuration.
type ComposeRequest struct {
	ClipsDir     string
	OutDir       string
	OverlayImage string
	CanvasWidth  int
	CanvasHeight int
	SubtitleMode string
	SubtitleFile string
	SubtitleDir  string
	SmartCrop    *bool
	Expansion    float64
}

// ComposeClips renders every clip in the request's clips directory onto
// the vertical canvas and returns the batch report.
func (p *Pipeline) ComposeClips(ctx context.Context, req ComposeRequest) (*compose.Report, error) {
	clipsDir := req.ClipsDir
	if clipsDir == "" {
		clipsDir = p.cfg.ClipsDir
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = p.cfg.DesignedDir
	}
	overlay := req.OverlayImage
	if overlay == "" {
		overlay = p.cfg.Template
	}
	smartCrop := p.cfg.SmartCrop
	if req.SmartCrop != nil {
		smartCrop = *req.SmartCrop
	}
	expansion := req.Expansion
	if expansion <= 0 {
		expansion = p.cfg.CropExpansion
	}

	modeStr := req.SubtitleMode
	if modeStr == "" {
		modeStr = p.cfg.Subtitles.Mode
	}
	mode, ok := subtitle.ParseMode(modeStr)
	if !ok {
		return nil, fmt.Errorf("invalid subtitle mode %q", modeStr)
	}
	subtitleFile := req.SubtitleFile
	if subtitleFile == "" {
		subtitleFile = p.cfg.Subtitles.File
	}
	searchDir := req.SubtitleDir
	if searchDir == "" {
		searchDir = p.cfg.Subtitles.Dir
	}
	if searchDir == "" {
		searchDir = p.cfg.SubtitledDir
	}

	canvasW := req.CanvasWidth
	if canvasW <= 0 {
		canvasW = p.cfg.CanvasWidth
	}
	canvasH := req.CanvasHeight
	if canvasH <= 0 {
		canvasH = p.cfg.CanvasHeight
	}

	detector := detect.NewCommandDetector(p.logger, p.cfg.Detector.Command, p.cfg.Detector.Token)
	resolver := detect.NewResolver(p.logger, detector, p.ffmpeg, smartCrop, p.cfg.Detector.Token, expansion)
	locator := subtitle.NewLocator(p.logger, mode, subtitleFile, searchDir)

	composer := compose.New(p.logger, p.ffmpeg, resolver, locator, compose.Options{
		ClipsDir:     clipsDir,
		OutDir:       outDir,
		OverlayImage: overlay,
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		CaptionFont:  p.cfg.Subtitles.FontName,
		Preset:       p.cfg.FFmpeg.Preset,
		CRF:          p.cfg.FFmpeg.CRF,
	})
	return composer.Run(ctx)
}

// Complete runs the whole workflow for one URL: fetch, cut, subtitle,
// compose. Returns the final composition report.
func (p *Pipeline) Complete(ctx context.Context, url string) (*compose.Report, error) {
	source, err := p.FetchVideo(ctx, url)
	if err != nil {
		return nil, err
	}

	cut, err := p.CutClips(ctx, source)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Int("clips", len(cut)).Msg("clips cut")

	subtitled, err := p.GenerateSubtitles(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Int("subtitled", len(subtitled)).Msg("subtitles burned")

	// Compose the subtitled intermediates; captions are already burned
	// in, so the caption stage stays off.
	return p.ComposeClips(ctx, ComposeRequest{
		ClipsDir:     p.cfg.SubtitledDir,
		SubtitleMode: string(subtitle.ModeOff),
	})
}
