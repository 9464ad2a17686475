// Package fetch downloads source videos with yt-dlp.
package fetch

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/pkg/util"
)

// Fetcher wraps the yt-dlp binary.
type Fetcher struct {
	logger  zerolog.Logger
	binary  string
	cookies string // optional cookies file for gated content

	// runner is injectable for tests; defaults to running the command.
	runner func(ctx context.Context, name string, args ...string) error
}

// New creates a fetcher.
func New(logger zerolog.Logger, binary, cookies string) *Fetcher {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Fetcher{
		logger:  logger.With().Str("component", "fetch").Logger(),
		binary:  binary,
		cookies: cookies,
	}
}

// WithRunner sets a custom command runner (for testing).
func (f *Fetcher) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	f.runner = runner
}

// Download fetches url into destDir as input.<ext> and returns the
// downloaded path. The container extension is whatever yt-dlp picked.
func (f *Fetcher) Download(ctx context.Context, url, destDir string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no URL provided")
	}
	if err := util.EnsureDir(destDir); err != nil {
		return "", fmt.Errorf("ensure videos dir: %w", err)
	}

	template := filepath.Join(destDir, "input.%(ext)s")
	args := []string{"-o", template}
	if f.cookies != "" && util.FileExists(f.cookies) {
		args = append(args, "--cookies", f.cookies)
	}
	args = append(args, url)

	f.logger.Info().Str("url", url).Str("dest", destDir).Msg("downloading video")

	if err := f.run(ctx, f.binary, args...); err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "input.*"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no video was downloaded to %s", destDir)
	}
	sort.Strings(matches)

	f.logger.Info().Str("path", matches[0]).Msg("video downloaded")
	return matches[0], nil
}

func (f *Fetcher) run(ctx context.Context, name string, args ...string) error {
	if f.runner != nil {
		return f.runner(ctx, name, args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
