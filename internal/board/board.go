// Package board hosts the knob controllers for one page and serializes calls into them.
package board

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// ErrUnknownKnob reports a call for a knob id the board does not host.
var ErrUnknownKnob = errors.New("board: unknown knob")

// ChangeKind identifies what a Change carries.
type ChangeKind string

const (
	// ChangeAngle carries a new knob angle.
	ChangeAngle ChangeKind = "angle"
	// ChangeValue carries a new mapped value.
	ChangeValue ChangeKind = "value"
)

// Change is one output emitted by a controller during a board call.
type Change struct {
	Knob  string
	Kind  ChangeKind
	Angle float64
	Value float64
}

// Definition describes one knob the host wants on the board.
type Definition struct {
	ID       string
	Settings knob.Settings
	// Bounds, when set, overrides Settings.Center with the rect center.
	Bounds *bounds.Rect
}

// KnobState is the state API view of one knob.
type KnobState struct {
	ID string `json:"id"`
	knob.Snapshot
}

// Driver is the set of operations input adapters perform on knobs.
type Driver interface {
	Begin(id string, p knob.Point) ([]Change, error)
	Update(id string, p knob.Point) ([]Change, error)
	End(id string) error
	SetValue(id string, value float64) ([]Change, error)
	SetBounds(id string, r bounds.Rect) ([]Change, error)
}

// Board owns one controller per valid definition.
type Board struct {
	mu     sync.Mutex
	knobs  map[string]*entry
	order  []string
	logger *slog.Logger
}

// entry pairs a controller with the recorder it emits into.
type entry struct {
	ctrl *knob.Controller
	rec  *recorder
}

// Ensure Board implements the driver interface.
var _ Driver = (*Board)(nil)

// New builds controllers for defs. Definitions that fail validation, lack an id or repeat
// an id are skipped and logged; the rest of the board still comes up.
func New(defs []Definition, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	b := &Board{
		knobs:  make(map[string]*entry, len(defs)),
		logger: logger,
	}
	for _, def := range defs {
		if err := b.add(def); err != nil {
			logger.Warn("knob skipped", "id", def.ID, "root", def.Settings.Root, "error", err)
			continue
		}
		logger.Debug("knob ready", "id", def.ID, "root", def.Settings.Root)
	}
	return b
}

// add constructs and registers the controller for def.
func (b *Board) add(def Definition) error {
	if def.ID == "" {
		return errors.New("board: knob id is required")
	}
	if _, exists := b.knobs[def.ID]; exists {
		return fmt.Errorf("board: duplicate knob id %q", def.ID)
	}
	settings := def.Settings
	if def.Bounds != nil && !bounds.Empty(*def.Bounds) {
		settings.Center = bounds.Center(*def.Bounds)
	}
	rec := &recorder{id: def.ID}
	ctrl, err := knob.New(settings, rec)
	if err != nil {
		return err
	}
	rec.drain()
	b.knobs[def.ID] = &entry{ctrl: ctrl, rec: rec}
	b.order = append(b.order, def.ID)
	return nil
}

// Begin opens a gesture session on knob id.
func (b *Board) Begin(id string, p knob.Point) ([]Change, error) {
	return b.with(id, func(c *knob.Controller) { c.BeginInteraction(p) })
}

// Update feeds a pointer move to knob id.
func (b *Board) Update(id string, p knob.Point) ([]Change, error) {
	return b.with(id, func(c *knob.Controller) { c.UpdateInteraction(p) })
}

// End closes the gesture session on knob id.
func (b *Board) End(id string) error {
	_, err := b.with(id, func(c *knob.Controller) { c.EndInteraction() })
	return err
}

// SetValue moves knob id to the angle representing value.
func (b *Board) SetValue(id string, value float64) ([]Change, error) {
	return b.with(id, func(c *knob.Controller) { c.SetValue(value) })
}

// SetBounds recenters knob id on the element rect. Empty rects are ignored.
func (b *Board) SetBounds(id string, r bounds.Rect) ([]Change, error) {
	return b.with(id, func(c *knob.Controller) {
		if bounds.Empty(r) {
			return
		}
		c.SetCenter(bounds.Center(r))
	})
}

// Sync re-emits the current output of every knob, in definition order.
func (b *Board) Sync() []Change {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Change
	for _, id := range b.order {
		e := b.knobs[id]
		e.ctrl.Emit()
		out = append(out, e.rec.drain()...)
	}
	return out
}

// EndAll closes every open gesture session.
func (b *Board) EndAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.order {
		e := b.knobs[id]
		if e.ctrl.State() == knob.Dragging {
			e.ctrl.EndInteraction()
			b.logger.Debug("session closed", "id", id)
		}
	}
}

// IDs returns the hosted knob ids in definition order.
func (b *Board) IDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Snapshot returns the state of every hosted knob in definition order.
func (b *Board) Snapshot() []KnobState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]KnobState, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, KnobState{ID: id, Snapshot: b.knobs[id].ctrl.Snapshot()})
	}
	return out
}

// with runs fn on knob id under the board lock and returns what it emitted.
func (b *Board) with(id string, fn func(*knob.Controller)) ([]Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.knobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKnob, id)
	}
	fn(e.ctrl)
	return e.rec.drain(), nil
}

// recorder is the knob.Sink a board controller emits into.
type recorder struct {
	id      string
	pending []Change
}

// AngleChanged records an angle change.
func (r *recorder) AngleChanged(angle float64) {
	r.pending = append(r.pending, Change{Knob: r.id, Kind: ChangeAngle, Angle: angle})
}

// ValueChanged records a value change.
func (r *recorder) ValueChanged(value float64) {
	r.pending = append(r.pending, Change{Knob: r.id, Kind: ChangeValue, Value: value})
}

// drain returns and clears the pending changes.
func (r *recorder) drain() []Change {
	out := r.pending
	r.pending = nil
	return out
}
