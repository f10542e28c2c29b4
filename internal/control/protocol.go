// Package control handles the knob input protocol and pointer gesture tracking.
package control

import (
	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// Inbound message types.
const (
	MsgDown         = "down"
	MsgMove         = "move"
	MsgUp           = "up"
	MsgCancel       = "cancel"
	MsgSetValue     = "setValue"
	MsgBounds       = "bounds"
	MsgInputEnabled = "inputEnabled"
	MsgSync         = "sync"
)

// Outbound event types.
const (
	EvtAngle = "angle"
	EvtValue = "value"
	EvtState = "state"
)

// Rect represents an element bounding box sent by the client UI.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Message is a control websocket payload.
type Message struct {
	T       string   `json:"t"`
	ID      int      `json:"id,omitempty"`
	Knob    string   `json:"knob,omitempty"`
	X       float64  `json:"x,omitempty"`
	Y       float64  `json:"y,omitempty"`
	Touches int      `json:"touches,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Text    string   `json:"text,omitempty"`
	Rect    *Rect    `json:"rect,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// Event is a control websocket payload sent to the client.
type Event struct {
	T            string   `json:"t"`
	Knob         string   `json:"knob,omitempty"`
	Angle        *float64 `json:"angle,omitempty"`
	Rotation     *float64 `json:"rotation,omitempty"`
	Transform    string   `json:"transform,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	InputEnabled *bool    `json:"inputEnabled,omitempty"`
}

// Point returns the pointer position carried by the message.
func (m Message) Point() knob.Point {
	return knob.Point{X: m.X, Y: m.Y}
}

// Bounds converts the wire rect into a bounds rect.
func (r Rect) Bounds() bounds.Rect {
	return bounds.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// EventFromChange renders a board change as an outbound event.
func EventFromChange(c board.Change) Event {
	switch c.Kind {
	case board.ChangeValue:
		v := c.Value
		return Event{T: EvtValue, Knob: c.Knob, Value: &v}
	default:
		angle := c.Angle
		rotation := knob.DisplayRotation(angle)
		return Event{
			T:         EvtAngle,
			Knob:      c.Knob,
			Angle:     &angle,
			Rotation:  &rotation,
			Transform: knob.CSSTransform(angle),
		}
	}
}

// StateEvent reports the input kill switch to the client.
func StateEvent(inputEnabled bool) Event {
	return Event{T: EvtState, InputEnabled: &inputEnabled}
}
