// Package detect resolves a stable speaker crop for a clip from an
// external region-detection capability. Detection is best-effort: any
// failure degrades to "no region" and the caller falls back to a
// centered crop, so a broken detector never blocks a render batch.
package detect

import "context"

// Region is one time-ranged speaker region reported by the detector.
// Start and End are in seconds relative to the clip.
type Region struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	W     int     `json:"w"`
	H     int     `json:"h"`
}

// AspectRatio is the target aspect the detector frames regions for.
type AspectRatio struct {
	W int
	H int
}

// Vertical is the fixed 9:16 target for short-form composition.
var Vertical = AspectRatio{W: 9, H: 16}

// Detector is the external region-detection capability. Implementations
// may fail for any reason (network, auth, no speaker found); callers
// treat every error identically as "no region".
type Detector interface {
	Detect(ctx context.Context, clipPath string, aspect AspectRatio) ([]Region, error)
}
