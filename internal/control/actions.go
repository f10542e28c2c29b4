package control

import "github.com/frudas24/knobslice/internal/knob"

// ActionType identifies the kind of knob operation to execute.
type ActionType string

const (
	// ActBegin opens a gesture session on a knob.
	ActBegin ActionType = "begin"
	// ActUpdate feeds a pointer move to the knob being dragged.
	ActUpdate ActionType = "update"
	// ActEnd closes the gesture session.
	ActEnd ActionType = "end"
)

// Action describes a normalized knob operation to apply.
type Action struct {
	Type  ActionType
	Knob  string
	Point knob.Point
}
