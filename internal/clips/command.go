package clips

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// CommandFinder invokes an external clip-finding helper and parses the
// boundaries it prints as JSON:
//
//	{"clips": [{"start": 12.0, "end": 47.5}, ...]}
type CommandFinder struct {
	logger zerolog.Logger
	binary string

	// runner is injectable for tests; defaults to running the command.
	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandFinder creates a finder around the given helper binary.
func NewCommandFinder(logger zerolog.Logger, binary string) *CommandFinder {
	return &CommandFinder{
		logger: logger.With().Str("component", "clipfinder").Logger(),
		binary: binary,
	}
}

// WithRunner sets a custom command runner (for testing).
func (f *CommandFinder) WithRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	f.runner = runner
}

type clipSet struct {
	Clips []Clip `json:"clips"`
}

// Find runs the helper against a source video.
func (f *CommandFinder) Find(ctx context.Context, sourcePath string) ([]Clip, error) {
	if f.binary == "" {
		return nil, fmt.Errorf("clip finder command not configured")
	}

	f.logger.Info().Str("source", sourcePath).Msg("finding clips")

	output, err := f.run(ctx, f.binary, sourcePath)
	if err != nil {
		return nil, err
	}

	var set clipSet
	if err := json.Unmarshal(output, &set); err != nil {
		return nil, fmt.Errorf("parse clip finder output: %w", err)
	}

	for i := range set.Clips {
		set.Clips[i].Index = i + 1
	}
	return set.Clips, nil
}

func (f *CommandFinder) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.runner != nil {
		return f.runner(ctx, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
