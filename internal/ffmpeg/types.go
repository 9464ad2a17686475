package ffmpeg

import "time"

// VideoInfo contains metadata about a video file.
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	Bitrate    int64
	VideoCodec string
	HasAudio   bool
	AudioCodec string
}

// Progress represents ffmpeg progress data parsed from stderr.
type Progress struct {
	Frame   int
	FPS     float64
	Bitrate string
	Time    string
	Speed   string
}

// ProgressFunc is called periodically with progress information while
// an ffmpeg operation executes.
type ProgressFunc func(*Progress)

// RunOptions configures one ffmpeg invocation.
type RunOptions struct {
	Args            []string
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Encoding defaults: quality-prioritized x264 with stream-copied audio.
const (
	DefaultCRF        = 18
	DefaultPreset     = "veryfast"
	DefaultVideoCodec = "libx264"
)

// ComposeOptions configures the two-input filter_complex render that
// produces a vertical composition.
type ComposeOptions struct {
	Input        string // source clip, primary input 0
	OverlayImage string // template graphic, primary input 1
	Output       string
	FilterGraph  string // serialized filter_complex text
	FinalLabel   string // designated final video stream label
	VideoCodec   string
	Preset       string
	CRF          int
	ProgressFunc ProgressFunc
}

// ClipOptions defines clip extraction parameters.
type ClipOptions struct {
	Start        time.Duration
	End          time.Duration
	Output       string
	CopyCodec    bool // true: -c copy for fast, keyframe-aligned cuts
	ProgressFunc ProgressFunc
}
