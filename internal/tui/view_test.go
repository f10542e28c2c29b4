package tui

import (
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// newTestView returns a view over a simulation screen with an angle-only and a ranged knob.
func newTestView(t *testing.T) (*View, *board.Board) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 24)

	r := knob.DefaultRange()
	b := board.New([]board.Definition{
		{ID: "dial", Settings: knob.Settings{Root: "dial"}},
		{ID: "volume", Settings: knob.Settings{Root: "volume", Range: &r}},
	}, nil)
	return New(screen, b, nil), b
}

// key builds a key event.
func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

// near compares floats produced by trig.
func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestLayout_CentersKnobsOnSlots verifies the board learns each knob's on-screen center.
func TestLayout_CentersKnobsOnSlots(t *testing.T) {
	_, b := newTestView(t)
	for i, st := range b.Snapshot() {
		if want := bounds.Center(slot(i)); st.Center != want {
			t.Fatalf("knob %s: expected center %+v, got %+v", st.ID, want, st.Center)
		}
	}
}

// TestMouseDrag_RotatesKnob verifies press, drag and release rotate by the pointer's travel.
func TestMouseDrag_RotatesKnob(t *testing.T) {
	v, b := newTestView(t)
	center := bounds.Center(slot(0))

	v.HandleEvent(tcell.NewEventMouse(21, 5, tcell.Button1, tcell.ModNone))
	if v.dragging != "dial" {
		t.Fatalf("expected drag on dial, got %q", v.dragging)
	}
	v.HandleEvent(tcell.NewEventMouse(11, 1, tcell.Button1, tcell.ModNone))
	v.HandleEvent(tcell.NewEventMouse(11, 1, tcell.ButtonNone, tcell.ModNone))
	if v.dragging != "" {
		t.Fatalf("expected drag to end on release")
	}

	from, _ := knob.AngleOf(pointerAt(21, 5), center)
	to, _ := knob.AngleOf(pointerAt(11, 1), center)
	st := b.Snapshot()[0]
	if want := knob.DefaultAngle + (to - from); !near(st.Angle, want) {
		t.Fatalf("expected angle %v, got %v", want, st.Angle)
	}
	if st.State != "idle" {
		t.Fatalf("expected idle after release, got %s", st.State)
	}
}

// TestMouse_PressOutsideKnobs verifies presses in empty space start nothing.
func TestMouse_PressOutsideKnobs(t *testing.T) {
	v, _ := newTestView(t)
	v.HandleEvent(tcell.NewEventMouse(79, 23, tcell.Button1, tcell.ModNone))
	if v.dragging != "" {
		t.Fatalf("expected no drag, got %q", v.dragging)
	}
}

// TestKeys_NudgeSelectedKnob verifies arrows rotate the selected knob.
func TestKeys_NudgeSelectedKnob(t *testing.T) {
	v, b := newTestView(t)
	v.HandleEvent(key(tcell.KeyRight, 0))
	if got := b.Snapshot()[0].Angle; !near(got, 85) {
		t.Fatalf("expected 85 after right, got %v", got)
	}
	v.HandleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift))
	if got := b.Snapshot()[0].Angle; !near(got, 86) {
		t.Fatalf("expected 86 after shift-left, got %v", got)
	}
}

// TestKeys_ValueEntry verifies typed values reach the selected ranged knob.
func TestKeys_ValueEntry(t *testing.T) {
	v, b := newTestView(t)
	v.HandleEvent(key(tcell.KeyTab, 0))
	for _, r := range "50" {
		v.HandleEvent(key(tcell.KeyRune, r))
	}
	v.HandleEvent(key(tcell.KeyEnter, 0))

	st := b.Snapshot()[1]
	if !near(st.Angle, 90) || !near(st.Value, 50) {
		t.Fatalf("expected 50 at 90 degrees, got %+v", st)
	}
	if len(v.entry) != 0 {
		t.Fatalf("expected entry to be cleared")
	}
}

// TestKeys_ValueEntryOnAngleOnlyKnob verifies values are ignored without a range.
func TestKeys_ValueEntryOnAngleOnlyKnob(t *testing.T) {
	v, b := newTestView(t)
	for _, r := range "12" {
		v.HandleEvent(key(tcell.KeyRune, r))
	}
	v.HandleEvent(key(tcell.KeyEnter, 0))
	if got := b.Snapshot()[0].Angle; got != knob.DefaultAngle {
		t.Fatalf("expected angle unchanged, got %v", got)
	}
}

// TestKeys_Quit verifies q and escape exit only when no value is being typed.
func TestKeys_Quit(t *testing.T) {
	v, _ := newTestView(t)
	v.HandleEvent(key(tcell.KeyRune, '7'))
	if !v.HandleEvent(key(tcell.KeyEscape, 0)) {
		t.Fatalf("expected escape to clear the entry first")
	}
	if v.HandleEvent(key(tcell.KeyRune, 'q')) {
		t.Fatalf("expected q to quit")
	}
}

// TestDraw_RendersLabels verifies knob names reach the screen.
func TestDraw_RendersLabels(t *testing.T) {
	v, _ := newTestView(t)
	v.Draw()
	r := slot(0)
	row := int(r.Y+r.H)/cellRatio + 1
	got := ""
	for col := int(r.X); col < int(r.X)+4; col++ {
		ch, _, _, _ := v.screen.GetContent(col, row)
		got += string(ch)
	}
	if got != "dial" {
		t.Fatalf("expected dial label, got %q", got)
	}
}
