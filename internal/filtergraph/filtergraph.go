// Package filtergraph builds the layered ffmpeg filter graph for the
// vertical composition: a blurred full-bleed background, a sharp
// foreground crop, optional burned-in captions, and a template overlay.
//
// The graph is held as typed stage records and only serialized to
// ffmpeg's textual filter_complex syntax at the render boundary, so all
// quoting and escaping rules live in this package.
package filtergraph

import (
	"fmt"
	"strings"

	"github.com/emigr8/clipforge/internal/geometry"
)

// Primary stream labels and the designated final output label.
const (
	SourceVideo  = "0:v"
	OverlayImage = "1:v"
	FinalLabel   = "outv"
)

// Stage names, in the order Build emits them.
const (
	StageBackground = "background"
	StageForeground = "foreground"
	StageFit        = "fit"
	StageComposite  = "composite"
	StageCaptions   = "captions"
	StageOverlay    = "overlay"
)

// Stage is a single named transform in the graph: one or more input
// stream labels, a filter expression, and the output label it produces.
type Stage struct {
	Name   string
	Inputs []string
	Filter string
	Output string
}

// Graph is an ordered chain of stages. Every stage input is either a
// primary input or the output of an earlier stage; the last stage
// produces FinalLabel.
type Graph struct {
	Stages []Stage
}

// centeredVerticalCrop extracts the largest 9:16 region centered in the
// source frame. Commas inside min() are escaped for the graph parser.
const centeredVerticalCrop = "crop=" +
	"iw*min(1.0\\,ih/iw*9/16):" +
	"ih*min(1.0\\,iw/ih*16/9):" +
	"(iw - iw*min(1.0\\,ih/iw*9/16))/2:" +
	"(ih - ih*min(1.0\\,iw/ih*16/9))/2"

// Build synthesizes the composition graph for one clip. A nil or
// degenerate crop selects the centered 9:16 fallback; an empty subtitle
// path skips the caption stage. The function is pure: it never touches
// the filesystem and identical inputs yield identical stages.
func Build(crop *geometry.Rect, canvasW, canvasH int, subtitlePath, captionStyle string) Graph {
	var stages []Stage

	// Background: scale to cover the canvas, blur hard, center-crop.
	stages = append(stages, Stage{
		Name:   StageBackground,
		Inputs: []string{SourceVideo},
		Filter: fmt.Sprintf(
			"scale='if(gte(iw/ih,%d/%d),-1,%d)':'if(gte(iw/ih,%d/%d),%d,-1)',boxblur=24:1,crop=%d:%d",
			canvasW, canvasH, canvasW,
			canvasW, canvasH, canvasH,
			canvasW, canvasH),
		Output: "bg",
	})

	// Foreground: detected crop when usable, centered 9:16 otherwise.
	fgFilter := centeredVerticalCrop
	if crop != nil && crop.W > 0 && crop.H > 0 {
		fgFilter = fmt.Sprintf("crop=%d:%d:%d:%d", crop.W, crop.H, crop.X, crop.Y)
	}
	stages = append(stages, Stage{
		Name:   StageForeground,
		Inputs: []string{SourceVideo},
		Filter: fgFilter,
		Output: "fg",
	})

	// Fit the foreground inside the canvas without upscaling past it.
	stages = append(stages, Stage{
		Name:   StageFit,
		Inputs: []string{"fg"},
		Filter: fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", canvasW, canvasH),
		Output: "fgs",
	})

	// Composite the foreground centered over the blurred background.
	stages = append(stages, Stage{
		Name:   StageComposite,
		Inputs: []string{"bg", "fgs"},
		Filter: "overlay=(W-w)/2:(H-h)/2",
		Output: "base",
	})

	// Captions burn before the template so the graphic sits on top.
	last := "base"
	if subtitlePath != "" {
		stages = append(stages, Stage{
			Name:   StageCaptions,
			Inputs: []string{last},
			Filter: fmt.Sprintf("subtitles='%s':force_style='%s'",
				EscapeSubtitlePath(subtitlePath), escapeStyle(captionStyle)),
			Output: "base2",
		})
		last = "base2"
	}

	stages = append(stages, Stage{
		Name:   StageOverlay,
		Inputs: []string{last, OverlayImage},
		Filter: "overlay=0:0",
		Output: FinalLabel,
	})

	return Graph{Stages: stages}
}

// String serializes the graph to ffmpeg filter_complex syntax. Chains
// are fully labeled, so links resolve by label regardless of separator.
func (g Graph) String() string {
	parts := make([]string, 0, len(g.Stages))
	for _, s := range g.Stages {
		var b strings.Builder
		for _, in := range s.Inputs {
			b.WriteString("[" + in + "]")
		}
		b.WriteString(s.Filter)
		b.WriteString("[" + s.Output + "]")
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ",")
}

// Validate checks label coherence: every stage input must be a primary
// input or the output of an earlier stage, and the last stage must
// produce FinalLabel.
func (g Graph) Validate() error {
	if len(g.Stages) == 0 {
		return fmt.Errorf("filtergraph: empty graph")
	}

	known := map[string]bool{SourceVideo: true, OverlayImage: true}
	for _, s := range g.Stages {
		for _, in := range s.Inputs {
			if !known[in] {
				return fmt.Errorf("filtergraph: stage %q reads unknown label %q", s.Name, in)
			}
		}
		if known[s.Output] {
			return fmt.Errorf("filtergraph: stage %q redefines label %q", s.Name, s.Output)
		}
		known[s.Output] = true
	}

	if last := g.Stages[len(g.Stages)-1]; last.Output != FinalLabel {
		return fmt.Errorf("filtergraph: final stage produces %q, want %q", last.Output, FinalLabel)
	}
	return nil
}
