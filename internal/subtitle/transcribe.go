package subtitle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/pkg/util"
)

// Transcriber is the external speech-to-text capability producing timed
// caption segments for a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) ([]Segment, error)
}

// WhisperCommand transcribes by running the whisper CLI with JSON
// output and reading the segment file it writes.
type WhisperCommand struct {
	logger zerolog.Logger
	binary string
	model  string

	// runner is injectable for tests; defaults to running the command.
	runner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperCommand creates a transcriber around the whisper binary.
func NewWhisperCommand(logger zerolog.Logger, binary, model string) *WhisperCommand {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = "small"
	}
	return &WhisperCommand{
		logger: logger.With().Str("component", "transcriber").Logger(),
		binary: binary,
		model:  model,
	}
}

// WithRunner sets a custom command runner (for testing).
func (w *WhisperCommand) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.runner = runner
}

// whisperOutput matches the JSON file whisper writes alongside its
// transcription.
type whisperOutput struct {
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs whisper for one media file and returns its segments.
func (w *WhisperCommand) Transcribe(ctx context.Context, mediaPath string) ([]Segment, error) {
	outDir, err := os.MkdirTemp("", "clipforge-whisper-")
	if err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		mediaPath,
		"--model", w.model,
		"--output_format", "json",
		"--output_dir", outDir,
	}

	w.logger.Info().
		Str("input", mediaPath).
		Str("model", w.model).
		Msg("transcribing")

	if err := w.run(ctx, w.binary, args...); err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(outDir, util.Stem(mediaPath)+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Segments))
	for i, seg := range out.Segments {
		segments = append(segments, Segment{
			Index: i + 1,
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return segments, nil
}

func (w *WhisperCommand) run(ctx context.Context, name string, args ...string) error {
	if w.runner != nil {
		return w.runner(ctx, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
