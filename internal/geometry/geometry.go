package geometry

import "math"

// Rect is a pixel-space rectangle inside a video frame.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// Valid reports whether the rectangle has positive extents and lies
// entirely inside a frameW x frameH frame.
func (r Rect) Valid(frameW, frameH int) bool {
	return r.W > 0 && r.H > 0 &&
		r.X >= 0 && r.Y >= 0 &&
		r.X+r.W <= frameW && r.Y+r.H <= frameH
}

// Area returns the rectangle's area in pixels.
func (r Rect) Area() int {
	return r.W * r.H
}

// Expand grows (or shrinks) a rectangle by factor around its centroid,
// clamped to the frame. The origin is clamped to zero first, then the
// extents are trimmed against the remaining frame span, so a crop near
// a frame edge loses the overflowing side instead of shifting.
//
// Callers should skip the call entirely for factor 1.0 and discard any
// result with non-positive extents.
func Expand(r Rect, frameW, frameH int, factor float64) Rect {
	cx := float64(r.X) + float64(r.W)/2
	cy := float64(r.Y) + float64(r.H)/2

	w := int(math.Floor(float64(r.W) * factor))
	h := int(math.Floor(float64(r.H) * factor))

	x := int(math.Floor(cx - float64(w)/2))
	y := int(math.Floor(cy - float64(h)/2))

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w > frameW-x {
		w = frameW - x
	}
	if h > frameH-y {
		h = frameH - y
	}

	return Rect{X: x, Y: y, W: w, H: h}
}
