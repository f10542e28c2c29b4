// Package knob implements the rotary knob geometry and interaction state machine.
package knob

// State is the interaction state of a controller.
type State int

const (
	// Idle means no gesture is active.
	Idle State = iota
	// Dragging means a gesture session is open.
	Dragging
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// interaction is the state of one drag gesture. The pointer angle is unanchored while the
// gesture has only been seen at the exact center.
type interaction struct {
	initialKnobAngle    float64
	initialPointerAngle float64
	lastPointerAngle    float64
	anchored            bool
}

// Snapshot is a read-only copy of a controller's observable state.
type Snapshot struct {
	Root        string  `json:"root"`
	Angle       float64 `json:"angle"`
	Rotation    float64 `json:"rotation"`
	Value       float64 `json:"value"`
	HasValue    bool    `json:"hasValue"`
	Revolutions int     `json:"revolutions"`
	State       string  `json:"state"`
	Center      Point   `json:"center"`
}

// Controller owns the current angle of one knob and the active gesture session.
// It is not safe for concurrent use; hosts serialize calls.
type Controller struct {
	root    string
	rng     *Range
	center  Point
	angle   float64
	session *interaction
	sink    Sink
}

// New validates settings and returns a controller that has already emitted its initial
// angle (and value, when a range is set). Invalid settings return a nil controller and an
// error wrapping ErrMissingRoot, ErrInvalidInitialAngle or ErrInvalidRange; the host
// decides whether to log it and carry on without the knob.
func New(s Settings, sink Sink) (*Controller, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink{}
	}
	c := &Controller{
		root:   s.Root,
		center: s.Center,
		sink:   sink,
	}
	if s.Range != nil {
		r := *s.Range
		c.rng = &r
	}
	c.RotateTo(s.startAngle())
	return c, nil
}

// BeginInteraction opens a gesture session at p. A session already open is replaced.
func (c *Controller) BeginInteraction(p Point) {
	sess := &interaction{initialKnobAngle: c.angle}
	if pointer, ok := AngleOf(p, c.center); ok {
		sess.initialPointerAngle = pointer
		sess.lastPointerAngle = pointer
		sess.anchored = true
	}
	c.session = sess
}

// UpdateInteraction rotates the knob by the pointer's angular travel since the session
// began. It does nothing while idle or when p sits exactly on the center.
func (c *Controller) UpdateInteraction(p Point) {
	sess := c.session
	if sess == nil {
		return
	}
	raw, ok := AngleOf(p, c.center)
	if !ok {
		return
	}
	if !sess.anchored {
		sess.initialPointerAngle = raw
		sess.lastPointerAngle = raw
		sess.anchored = true
		return
	}

	pointer := Unwrap(raw, sess.lastPointerAngle)
	sess.lastPointerAngle = pointer
	delta := pointer - sess.initialPointerAngle
	c.RotateTo(sess.initialKnobAngle + delta)
}

// EndInteraction closes the gesture session without changing the angle.
func (c *Controller) EndInteraction() {
	c.session = nil
}

// SetValue moves the knob to the angle representing value. It is a no-op for angle-only
// knobs and for NaN or infinite input. Values outside the range are clamped first.
func (c *Controller) SetValue(value float64) {
	if c.rng == nil || !finite(value) {
		return
	}
	c.RotateTo(c.rng.AngleOf(c.rng.ClampValue(value)))
}

// RotateTo commits angle as the current angle after applying the range policy, then emits
// the angle and, when a range is set, the matching value.
func (c *Controller) RotateTo(angle float64) {
	if !finite(angle) {
		return
	}
	if c.rng != nil {
		angle = c.rng.Clamp(angle)
	}
	c.angle = angle
	c.Emit()
}

// SetCenter moves the rotation center. An open session is re-anchored at the current angle
// so the knob does not jump.
func (c *Controller) SetCenter(p Point) {
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	c.center = p
	if c.session != nil {
		c.session = &interaction{initialKnobAngle: c.angle}
	}
}

// Emit re-sends the current angle and value to the sink.
func (c *Controller) Emit() {
	c.sink.AngleChanged(c.angle)
	if c.rng != nil {
		c.sink.ValueChanged(c.rng.ValueOf(c.angle))
	}
}

// Angle returns the current, unnormalized angle.
func (c *Controller) Angle() float64 {
	return c.angle
}

// Value returns the value for the current angle; ok is false for angle-only knobs.
func (c *Controller) Value() (float64, bool) {
	if c.rng == nil {
		return 0, false
	}
	return c.rng.ValueOf(c.angle), true
}

// Range returns a copy of the configured range, if any.
func (c *Controller) Range() (Range, bool) {
	if c.rng == nil {
		return Range{}, false
	}
	return *c.rng, true
}

// State reports whether a gesture session is open.
func (c *Controller) State() State {
	if c.session != nil {
		return Dragging
	}
	return Idle
}

// Root returns the root reference the controller was built for.
func (c *Controller) Root() string {
	return c.root
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	value, ok := c.Value()
	return Snapshot{
		Root:        c.root,
		Angle:       c.angle,
		Rotation:    DisplayRotation(c.angle),
		Value:       value,
		HasValue:    ok,
		Revolutions: Revolutions(c.angle),
		State:       c.State().String(),
		Center:      c.center,
	}
}
