package control

import "github.com/frudas24/knobslice/internal/knob"

// GestureState tracks the single pointer driving a knob on one connection.
type GestureState struct {
	active  bool
	knob    string
	pointer int
	last    knob.Point
}

// NewGestureState returns a ready-to-use gesture tracker.
func NewGestureState() *GestureState {
	return &GestureState{}
}

// HandleDown processes a pointer down on knobID. Multi-touch downs and a second pointer
// while one is already dragging are ignored.
func (g *GestureState) HandleDown(inputEnabled bool, knobID string, pointerID, touches int, p knob.Point) []Action {
	if !inputEnabled || knobID == "" || touches > 1 || g.active {
		return nil
	}
	g.active = true
	g.knob = knobID
	g.pointer = pointerID
	g.last = p
	return []Action{{Type: ActBegin, Knob: knobID, Point: p}}
}

// HandleMove processes a pointer move. Only the pointer that started the drag counts,
// multi-touch samples are ignored and repeated samples at the same position are dropped.
func (g *GestureState) HandleMove(inputEnabled bool, pointerID, touches int, p knob.Point) []Action {
	if !inputEnabled || !g.active || g.pointer != pointerID || touches > 1 {
		return nil
	}
	if p == g.last {
		return nil
	}
	g.last = p
	return []Action{{Type: ActUpdate, Knob: g.knob, Point: p}}
}

// HandleUp processes a pointer up. It is honored with input disabled so sessions close.
func (g *GestureState) HandleUp(pointerID int) []Action {
	if !g.active || g.pointer != pointerID {
		return nil
	}
	return g.HandleCancel()
}

// HandleCancel ends the active drag regardless of pointer.
func (g *GestureState) HandleCancel() []Action {
	if !g.active {
		return nil
	}
	id := g.knob
	g.Reset()
	return []Action{{Type: ActEnd, Knob: id}}
}

// Reset forgets the active drag without emitting anything.
func (g *GestureState) Reset() {
	*g = GestureState{}
}

// Active returns the knob being dragged, if any.
func (g *GestureState) Active() (string, bool) {
	return g.knob, g.active
}
