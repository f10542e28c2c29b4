package testutil

import (
	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// Call records a single driver operation.
type Call struct {
	Name  string
	Knob  string
	Point knob.Point
	Value float64
	Rect  bounds.Rect
}

// FakeDriver implements board.Driver and records calls for tests.
// Changes, when set, is returned from every operation that reports changes.
// SyncChanges is returned from Sync.
type FakeDriver struct {
	Calls       []Call
	Changes     []board.Change
	SyncChanges []board.Change
	Err         error
}

// Ensure FakeDriver implements the interface.
var _ board.Driver = (*FakeDriver)(nil)

// Begin records a session start.
func (f *FakeDriver) Begin(id string, p knob.Point) ([]board.Change, error) {
	f.Calls = append(f.Calls, Call{Name: "Begin", Knob: id, Point: p})
	return f.Changes, f.Err
}

// Update records a pointer move.
func (f *FakeDriver) Update(id string, p knob.Point) ([]board.Change, error) {
	f.Calls = append(f.Calls, Call{Name: "Update", Knob: id, Point: p})
	return f.Changes, f.Err
}

// End records a session end.
func (f *FakeDriver) End(id string) error {
	f.Calls = append(f.Calls, Call{Name: "End", Knob: id})
	return f.Err
}

// SetValue records a value entry.
func (f *FakeDriver) SetValue(id string, value float64) ([]board.Change, error) {
	f.Calls = append(f.Calls, Call{Name: "SetValue", Knob: id, Value: value})
	return f.Changes, f.Err
}

// SetBounds records an element resize.
func (f *FakeDriver) SetBounds(id string, r bounds.Rect) ([]board.Change, error) {
	f.Calls = append(f.Calls, Call{Name: "SetBounds", Knob: id, Rect: r})
	return f.Changes, f.Err
}

// Sync records a full re-emit request.
func (f *FakeDriver) Sync() []board.Change {
	f.Calls = append(f.Calls, Call{Name: "Sync"})
	return f.SyncChanges
}

// EndAll records a request to close every session.
func (f *FakeDriver) EndAll() {
	f.Calls = append(f.Calls, Call{Name: "EndAll"})
}

// Names returns the recorded operation names in order.
func (f *FakeDriver) Names() []string {
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.Name)
	}
	return out
}
