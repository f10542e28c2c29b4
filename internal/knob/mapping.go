// Package knob implements the rotary knob geometry and interaction state machine.
package knob

import (
	"fmt"
	"math"
)

// Stop pairs an angle with the value it represents.
type Stop struct {
	Angle float64 `json:"angle" yaml:"angle"`
	Value float64 `json:"value" yaml:"value"`
}

// Range bounds the valid knob angles and maps them linearly onto values.
type Range struct {
	Min Stop `json:"min" yaml:"min"`
	Max Stop `json:"max" yaml:"max"`
}

// DefaultRange returns the 270 degree sweep from 225 (value 0) clockwise to -45 (value 100).
func DefaultRange() Range {
	return Range{
		Min: Stop{Angle: 225, Value: 0},
		Max: Stop{Angle: -45, Value: 100},
	}
}

// Validate reports whether every field is a finite number and the range has a non-zero sweep.
func (r Range) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"min.angle", r.Min.Angle},
		{"min.value", r.Min.Value},
		{"max.angle", r.Max.Angle},
		{"max.value", r.Max.Value},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidRange, f.name)
		}
	}
	if r.Min.Angle == r.Max.Angle {
		return fmt.Errorf("%w: min.angle and max.angle must differ", ErrInvalidRange)
	}
	return nil
}

// DirectionSign is +1 when the value grows with the angle (counter-clockwise), otherwise -1.
func (r Range) DirectionSign() float64 {
	if r.Max.Angle > r.Min.Angle {
		return 1
	}
	return -1
}

// ValueOf maps angle to a value by its absolute angular distance from Min.
// The mapping is not directional; pair it with DirectionSign when direction matters.
func (r Range) ValueOf(angle float64) float64 {
	percent := math.Abs(angle-r.Min.Angle) / r.sweep()
	return percent*math.Abs(r.Max.Value-r.Min.Value) + r.Min.Value
}

// AngleOf is the inverse of ValueOf: it places value along the sweep in the range direction.
func (r Range) AngleOf(value float64) float64 {
	span := math.Abs(r.Max.Value - r.Min.Value)
	percent := 0.0
	if span != 0 {
		percent = math.Abs(value-r.Min.Value) / span
	}
	return percent*r.sweep()*r.DirectionSign() + r.Min.Angle
}

// Contains reports whether angle lies between the two bound angles, inclusive.
func (r Range) Contains(angle float64) bool {
	lo, hi := r.angleBounds()
	return angle >= lo && angle <= hi
}

// Clamp applies the range-exceeded policy: an angle outside the range snaps to Min or Max,
// whichever is closer by its signed percent of the sweep measured from Min.
func (r Range) Clamp(angle float64) float64 {
	if r.Contains(angle) {
		return angle
	}
	if r.percentFromMin(angle) < 0.5 {
		return r.Min.Angle
	}
	return r.Max.Angle
}

// ClampValue keeps value inside the interval spanned by Min.Value and Max.Value.
func (r Range) ClampValue(value float64) float64 {
	lo := math.Min(r.Min.Value, r.Max.Value)
	hi := math.Max(r.Min.Value, r.Max.Value)
	return math.Max(lo, math.Min(hi, value))
}

// percentFromMin is the signed position of angle along the sweep: 0 at Min, 1 at Max.
func (r Range) percentFromMin(angle float64) float64 {
	return (angle - r.Min.Angle) / (r.Max.Angle - r.Min.Angle)
}

// sweep is the absolute angular size of the range.
func (r Range) sweep() float64 {
	return math.Abs(r.Max.Angle - r.Min.Angle)
}

// angleBounds returns the lower and upper angle regardless of direction.
func (r Range) angleBounds() (float64, float64) {
	return math.Min(r.Min.Angle, r.Max.Angle), math.Max(r.Min.Angle, r.Max.Angle)
}
