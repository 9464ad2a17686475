// Package subtitle covers the caption side of the pipeline: locating
// the subtitle track for a clip, SRT reading/writing, and the
// transcribe-and-burn stage that produces subtitled intermediates.
package subtitle

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emigr8/clipforge/pkg/util"
)

// Extension is the subtitle file extension the pipeline produces and
// looks for.
const Extension = ".srt"

// Mode selects how subtitle tracks are resolved per clip.
type Mode string

const (
	// ModeOff never burns captions.
	ModeOff Mode = "off"
	// ModeAuto uses a track co-located with the clip, else one in the
	// search directory.
	ModeAuto Mode = "auto"
	// ModeFile uses one explicit track for every clip.
	ModeFile Mode = "file"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeOff, ModeAuto, ModeFile:
		return Mode(s), true
	}
	return "", false
}

// Locator resolves the subtitle track path for a clip. Only path
// existence is checked; no subtitle content is parsed here.
type Locator struct {
	logger    zerolog.Logger
	mode      Mode
	file      string // explicit track for ModeFile
	searchDir string // secondary location for ModeAuto
}

// NewLocator creates a locator for the given mode.
func NewLocator(logger zerolog.Logger, mode Mode, file, searchDir string) *Locator {
	return &Locator{
		logger:    logger.With().Str("component", "subtitle").Logger(),
		mode:      mode,
		file:      file,
		searchDir: searchDir,
	}
}

// Locate returns the subtitle path for a clip, or "" when no track
// applies. A missing explicit file is a warning, never an error.
func (l *Locator) Locate(clipPath string) string {
	switch l.mode {
	case ModeFile:
		if l.file != "" && util.FileExists(l.file) {
			return l.file
		}
		l.logger.Warn().Str("file", l.file).Msg("explicit subtitle file not found; skipping captions")
		return ""

	case ModeAuto:
		colocated := strings.TrimSuffix(clipPath, filepath.Ext(clipPath)) + Extension
		if util.FileExists(colocated) {
			return colocated
		}
		searched := filepath.Join(l.searchDir, util.Stem(clipPath)+Extension)
		if util.FileExists(searched) {
			return searched
		}
		return ""

	default:
		return ""
	}
}
