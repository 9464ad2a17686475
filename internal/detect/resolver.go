package detect

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/internal/ffmpeg"
	"github.com/emigr8/clipforge/internal/geometry"
)

// Prober supplies true pixel dimensions for a clip. Satisfied by
// *ffmpeg.Executor.
type Prober interface {
	ProbeVideo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// Resolver turns the detector's time-ranged regions into a single crop
// rectangle per clip, optionally expanded around its centroid.
type Resolver struct {
	logger    zerolog.Logger
	detector  Detector
	prober    Prober
	enabled   bool
	token     string
	expansion float64
}

// NewResolver creates a resolver. With enabled false or an empty token
// it resolves every clip to no region without calling the detector.
func NewResolver(logger zerolog.Logger, detector Detector, prober Prober, enabled bool, token string, expansion float64) *Resolver {
	return &Resolver{
		logger:    logger.With().Str("component", "detect").Logger(),
		detector:  detector,
		prober:    prober,
		enabled:   enabled,
		token:     token,
		expansion: expansion,
	}
}

// Resolve returns the crop rectangle for a clip, or nil when detection
// is off, fails, or yields nothing usable. nil means the caller should
// use the centered-crop fallback.
func (r *Resolver) Resolve(ctx context.Context, clipPath string) *geometry.Rect {
	if !r.enabled {
		r.logger.Info().Str("clip", clipPath).Msg("smart crop disabled; using centered crop")
		return nil
	}
	if r.token == "" {
		r.logger.Info().Str("clip", clipPath).Msg("detector token missing; using centered crop")
		return nil
	}

	regions, err := r.detector.Detect(ctx, clipPath, Vertical)
	if err != nil {
		r.logger.Warn().Err(err).Str("clip", clipPath).Msg("region detection failed; using centered crop")
		return nil
	}

	rect := pickPrimary(regions)
	if rect == nil {
		r.logger.Info().Str("clip", clipPath).Msg("no usable region detected; using centered crop")
		return nil
	}

	if r.expansion == 1.0 {
		return rect
	}

	info, err := r.prober.ProbeVideo(ctx, clipPath)
	if err != nil {
		r.logger.Warn().Err(err).Str("clip", clipPath).Msg("dimension probe failed; using centered crop")
		return nil
	}

	expanded := geometry.Expand(*rect, info.Width, info.Height, r.expansion)
	if !expanded.Valid(info.Width, info.Height) {
		r.logger.Warn().
			Str("clip", clipPath).
			Interface("rect", expanded).
			Msg("expanded crop degenerate; using centered crop")
		return nil
	}

	r.logger.Info().
		Str("clip", clipPath).
		Interface("from", *rect).
		Interface("to", expanded).
		Float64("factor", r.expansion).
		Msg("expanded crop")
	return &expanded
}

// pickPrimary selects the region with the longest time span; ties keep
// the first-occurring region. Regions without positive extents are
// rejected.
func pickPrimary(regions []Region) *geometry.Rect {
	if len(regions) == 0 {
		return nil
	}

	best := regions[0]
	for _, reg := range regions[1:] {
		if reg.End-reg.Start > best.End-best.Start {
			best = reg
		}
	}

	if best.W <= 0 || best.H <= 0 {
		return nil
	}
	return &geometry.Rect{X: best.X, Y: best.Y, W: best.W, H: best.H}
}
