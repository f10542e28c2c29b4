// Package testutil provides recording fakes shared by package tests.
package testutil

import "github.com/frudas24/knobslice/internal/knob"

// RecordingSink implements knob.Sink and keeps every emitted angle and value.
type RecordingSink struct {
	Angles []float64
	Values []float64
}

// Ensure RecordingSink implements the interface.
var _ knob.Sink = (*RecordingSink)(nil)

// AngleChanged records an angle.
func (s *RecordingSink) AngleChanged(angle float64) {
	s.Angles = append(s.Angles, angle)
}

// ValueChanged records a value.
func (s *RecordingSink) ValueChanged(value float64) {
	s.Values = append(s.Values, value)
}

// LastAngle returns the most recent angle; ok is false when none was emitted.
func (s *RecordingSink) LastAngle() (float64, bool) {
	if len(s.Angles) == 0 {
		return 0, false
	}
	return s.Angles[len(s.Angles)-1], true
}

// LastValue returns the most recent value; ok is false when none was emitted.
func (s *RecordingSink) LastValue() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// Reset forgets everything recorded so far.
func (s *RecordingSink) Reset() {
	s.Angles = nil
	s.Values = nil
}
