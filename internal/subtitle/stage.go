package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/pkg/util"
)

// Burner renders a clip with a subtitle track burned in. Satisfied by
// *ffmpeg.Executor.
type Burner interface {
	Burn(ctx context.Context, input, subtitlePath, output string) error
}

// Stage runs the caption pass over a clips directory: transcribe each
// clip, write its SRT, burn a subtitled intermediate.
type Stage struct {
	logger      zerolog.Logger
	transcriber Transcriber
	burner      Burner
}

// NewStage creates the caption stage.
func NewStage(logger zerolog.Logger, transcriber Transcriber, burner Burner) *Stage {
	return &Stage{
		logger:      logger.With().Str("component", "subtitles").Logger(),
		transcriber: transcriber,
		burner:      burner,
	}
}

// Run processes every clip_*.mp4 under clipsDir in sorted order,
// writing <stem>.srt and <stem>_subtitled.mp4 into outDir. The first
// per-clip failure aborts the stage; later stages rely on a complete
// subtitle set.
func (s *Stage) Run(ctx context.Context, clipsDir, outDir string) ([]string, error) {
	clips, err := filepath.Glob(filepath.Join(clipsDir, "clip_*.mp4"))
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	sort.Strings(clips)

	if len(clips) == 0 {
		s.logger.Info().Str("dir", clipsDir).Msg("no clips found")
		return nil, nil
	}

	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	var outputs []string
	for _, clip := range clips {
		if ctx.Err() != nil {
			return outputs, ctx.Err()
		}

		stem := util.Stem(clip)
		s.logger.Info().Str("clip", filepath.Base(clip)).Msg("processing clip")

		segments, err := s.transcriber.Transcribe(ctx, clip)
		if err != nil {
			return outputs, fmt.Errorf("transcribe %s: %w", filepath.Base(clip), err)
		}

		srtPath := filepath.Join(outDir, stem+Extension)
		if err := writeSRTFile(srtPath, segments); err != nil {
			return outputs, err
		}

		output := filepath.Join(outDir, stem+"_subtitled.mp4")
		if err := s.burner.Burn(ctx, clip, srtPath, output); err != nil {
			return outputs, fmt.Errorf("burn %s: %w", filepath.Base(clip), err)
		}
		outputs = append(outputs, output)
	}

	return outputs, nil
}

func writeSRTFile(path string, segments []Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteSRT(f, segments); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
