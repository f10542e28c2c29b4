// Package bounds describes knob element bounding boxes in pointer coordinates.
package bounds

import "github.com/frudas24/knobslice/internal/knob"

// Rect describes a rectangle using top-left origin and size.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Normalize returns a rectangle with non-negative width/height.
func Normalize(r Rect) Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Contains reports whether a point is inside the rectangle (edges inclusive).
func Contains(r Rect, p knob.Point) bool {
	r = Normalize(r)
	if r.W <= 0 || r.H <= 0 {
		return false
	}
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Empty reports whether the rectangle has no area.
func Empty(r Rect) bool {
	r = Normalize(r)
	return r.W <= 0 || r.H <= 0
}

// Center returns the rotation center of an element occupying r.
func Center(r Rect) knob.Point {
	r = Normalize(r)
	return knob.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}
