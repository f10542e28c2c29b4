// Package knob implements the rotary knob geometry and interaction state machine.
package knob

import "math"

const (
	// fullTurn is one revolution in degrees.
	fullTurn = 360.0
	// halfTurn is half a revolution in degrees.
	halfTurn = 180.0
	// displayOffset converts the math convention (0 at +x) to screen convention (0 at top).
	displayOffset = 90.0
)

// Point is a 2D coordinate in the same space as the knob center (e.g. viewport pixels).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AngleOf returns the counter-clockwise angle in degrees of p around center, with 0 on the
// positive x axis. Screen y grows downward, so it is inverted before the math.
// The result lies in (-90, 270]. ok is false when p coincides with center or any
// coordinate is not finite.
func AngleOf(p, center Point) (float64, bool) {
	if !finite(p.X) || !finite(p.Y) || !finite(center.X) || !finite(center.Y) {
		return 0, false
	}
	dx := p.X - center.X
	dy := center.Y - p.Y
	hyp := math.Hypot(dx, dy)
	if hyp == 0 {
		return 0, false
	}

	asinDeg := toDegrees(math.Asin(clampUnit(dy / hyp)))
	if dx > 0 {
		return asinDeg, true
	}
	return halfTurn - asinDeg, true
}

// Unwrap shifts raw by whole turns so the result lies within half a turn of reference.
// Feeding each new pointer angle through Unwrap against the previous one keeps a drag
// continuous across any number of revolutions.
func Unwrap(raw, reference float64) float64 {
	turns := math.Round((reference - raw) / fullTurn)
	return raw + turns*fullTurn
}

// Revolutions returns the whole-turn count contained in angle (floor division by 360).
// Counts beyond the int range saturate; NaN counts as zero turns.
func Revolutions(angle float64) int {
	turns := math.Floor(angle / fullTurn)
	switch {
	case math.IsNaN(turns):
		return 0
	case turns >= math.MaxInt:
		return math.MaxInt
	case turns <= math.MinInt:
		return math.MinInt
	}
	return int(turns)
}

// DisplayRotation converts a knob angle to the clockwise-from-top rotation an
// output adapter applies to the visual element.
func DisplayRotation(angle float64) float64 {
	return displayOffset - angle
}

// toDegrees converts radians to degrees.
func toDegrees(rad float64) float64 {
	return rad * halfTurn / math.Pi
}

// clampUnit keeps asin arguments inside [-1, 1] against rounding drift.
func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
