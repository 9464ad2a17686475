package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// tokenEnv is the environment variable the helper reads its detector
// credentials from.
const tokenEnv = "PYANNOTE_AUTH_TOKEN"

// CommandDetector invokes an external speaker-detection helper and
// parses the region set it prints as JSON:
//
//	{"segments": [{"start": 0, "end": 12.4, "x": 320, "y": 0, "w": 608, "h": 1080}, ...]}
type CommandDetector struct {
	logger zerolog.Logger
	binary string
	token  string

	// runner is injectable for tests; defaults to running the command.
	runner func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandDetector creates a detector around the given helper binary.
func NewCommandDetector(logger zerolog.Logger, binary, token string) *CommandDetector {
	return &CommandDetector{
		logger: logger.With().Str("component", "detector").Logger(),
		binary: binary,
		token:  token,
	}
}

// WithRunner sets a custom command runner (for testing).
func (d *CommandDetector) WithRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	d.runner = runner
}

type regionSet struct {
	Segments []Region `json:"segments"`
}

// Detect runs the helper for one clip and returns its region set.
func (d *CommandDetector) Detect(ctx context.Context, clipPath string, aspect AspectRatio) ([]Region, error) {
	if d.binary == "" {
		return nil, fmt.Errorf("detector command not configured")
	}

	args := []string{clipPath, "--aspect", fmt.Sprintf("%d:%d", aspect.W, aspect.H)}

	d.logger.Debug().
		Str("cmd", d.binary).
		Strs("args", args).
		Msg("invoking region detector")

	output, err := d.run(ctx, d.binary, args...)
	if err != nil {
		return nil, err
	}

	var set regionSet
	if err := json.Unmarshal(output, &set); err != nil {
		return nil, fmt.Errorf("parse detector output: %w", err)
	}
	return set.Segments, nil
}

func (d *CommandDetector) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if d.runner != nil {
		return d.runner(ctx, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), tokenEnv+"="+d.token)

	var stderr strings.Builder
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
