// Package knob implements the rotary knob geometry and interaction state machine.
package knob

import (
	"errors"
	"fmt"
)

const (
	// DefaultAngle is where an angle-only knob starts: pointing straight up.
	DefaultAngle = 90.0
)

var (
	// ErrMissingRoot reports settings without a root element reference.
	ErrMissingRoot = errors.New("knob: missing root reference")
	// ErrInvalidInitialAngle reports a non-numeric initial angle.
	ErrInvalidInitialAngle = errors.New("knob: initial angle is not a number")
	// ErrInvalidRange reports a range with non-numeric fields or a zero sweep.
	ErrInvalidRange = errors.New("knob: invalid range")
	// ErrInvalidCenter reports a rotation center with a non-finite coordinate.
	ErrInvalidCenter = errors.New("knob: center is not a finite point")
)

// Settings configures a single knob controller.
type Settings struct {
	// Root identifies the element the host binds the knob to.
	Root string
	// InitialAngle is optional; nil selects the default for the knob kind.
	InitialAngle *float64
	// Range is optional; nil makes an angle-only knob with no value semantics.
	Range *Range
	// Center is the rotation center in pointer coordinates.
	Center Point
}

// Validate checks settings the way construction does, without building a controller.
func (s Settings) Validate() error {
	if s.Root == "" {
		return ErrMissingRoot
	}
	if s.InitialAngle != nil && !finite(*s.InitialAngle) {
		return fmt.Errorf("%w: %v", ErrInvalidInitialAngle, *s.InitialAngle)
	}
	if !finite(s.Center.X) || !finite(s.Center.Y) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCenter, s.Center.X, s.Center.Y)
	}
	if s.Range != nil {
		if err := s.Range.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// startAngle resolves the initial angle, falling back to the range minimum or DefaultAngle.
func (s Settings) startAngle() float64 {
	if s.InitialAngle != nil {
		return *s.InitialAngle
	}
	if s.Range != nil {
		return s.Range.Min.Angle
	}
	return DefaultAngle
}

// Float returns a pointer to v, for optional settings fields.
func Float(v float64) *float64 {
	return &v
}
