// Package knob implements the rotary knob geometry and interaction state machine.
package knob

import "fmt"

// Sink receives the controller's output. Implementations render the rotation and write
// the value into any bound display.
type Sink interface {
	AngleChanged(angle float64)
	ValueChanged(value float64)
}

// NopSink discards all output.
type NopSink struct{}

// AngleChanged does nothing.
func (NopSink) AngleChanged(float64) {}

// ValueChanged does nothing.
func (NopSink) ValueChanged(float64) {}

// CSSTransform renders angle as the CSS rotate transform applied to the knob element.
func CSSTransform(angle float64) string {
	return fmt.Sprintf("rotate(%gdeg)", DisplayRotation(angle))
}
