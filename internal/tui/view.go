// Package tui renders knobs in a terminal and drives them with the mouse and keyboard.
package tui

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/control"
	"github.com/frudas24/knobslice/internal/knob"
)

// Terminal cells are roughly twice as tall as wide, so pointer y is row*2.
const (
	knobCols  = 20
	knobRows  = 10
	slotGap   = 4
	marginX   = 2
	marginY   = 1
	cellRatio = 2
	nudgeStep = 5.0
	fineStep  = 1.0
)

var (
	styleRing      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleIndicator = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSelected  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleStatus    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// View owns the terminal screen and the board it renders.
type View struct {
	screen   tcell.Screen
	board    *board.Board
	logger   *slog.Logger
	ids      []string
	selected int
	dragging string
	entry    []rune
	status   string
}

// New returns a view over b and lays the knobs out on screen.
func New(screen tcell.Screen, b *board.Board, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v := &View{
		screen: screen,
		board:  b,
		logger: logger,
		ids:    b.IDs(),
		status: "drag with the mouse, arrows nudge, tab selects, type a value + enter, q quits",
	}
	v.Layout()
	return v
}

// Run processes events until the user quits or the screen is finalized.
func (v *View) Run() {
	v.Draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		if !v.HandleEvent(ev) {
			return
		}
		v.Draw()
	}
}

// slot returns the pointer-space rect of the i-th knob.
func slot(i int) bounds.Rect {
	return bounds.Rect{
		X: float64(marginX + i*(knobCols+slotGap)),
		Y: float64(marginY * cellRatio),
		W: knobCols,
		H: knobRows * cellRatio,
	}
}

// pointerAt converts a cell position into pointer space, using the cell center.
func pointerAt(col, row int) knob.Point {
	return knob.Point{X: float64(col) + 0.5, Y: float64(row*cellRatio) + 1}
}

// Layout tells the board where each knob sits on screen.
func (v *View) Layout() {
	for i, id := range v.ids {
		if _, err := v.board.SetBounds(id, slot(i)); err != nil {
			v.logger.Warn("layout failed", "knob", id, "error", err)
		}
	}
}

// HandleEvent applies one terminal event. It returns false when the view should exit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
		v.Layout()
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventKey:
		return v.handleKey(ev)
	}
	return true
}

// handleMouse maps button-1 press, drag and release onto a knob session.
func (v *View) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	p := pointerAt(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0

	switch {
	case pressed && v.dragging == "":
		for i, id := range v.ids {
			if !bounds.Contains(slot(i), p) {
				continue
			}
			if _, err := v.board.Begin(id, p); err != nil {
				v.logger.Warn("begin failed", "knob", id, "error", err)
				return
			}
			v.dragging = id
			v.selected = i
			return
		}
	case pressed:
		if _, err := v.board.Update(v.dragging, p); err != nil {
			v.logger.Warn("update failed", "knob", v.dragging, "error", err)
		}
	case v.dragging != "":
		if err := v.board.End(v.dragging); err != nil {
			v.logger.Warn("end failed", "knob", v.dragging, "error", err)
		}
		v.dragging = ""
	}
}

// handleKey handles selection, nudging, value entry and quitting.
func (v *View) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if len(v.entry) == 0 {
			return false
		}
		v.entry = v.entry[:0]
	case tcell.KeyTab:
		if len(v.ids) > 0 {
			v.selected = (v.selected + 1) % len(v.ids)
		}
	case tcell.KeyBacktab:
		if len(v.ids) > 0 {
			v.selected = (v.selected + len(v.ids) - 1) % len(v.ids)
		}
	case tcell.KeyLeft, tcell.KeyUp:
		v.nudge(v.step(ev))
	case tcell.KeyRight, tcell.KeyDown:
		v.nudge(-v.step(ev))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(v.entry); n > 0 {
			v.entry = v.entry[:n-1]
		}
	case tcell.KeyEnter:
		v.commitEntry()
	case tcell.KeyRune:
		r := ev.Rune()
		if r == 'q' && len(v.entry) == 0 {
			return false
		}
		if isValueRune(r) {
			v.entry = append(v.entry, r)
		}
	}
	return true
}

// step returns the nudge size, finer with shift held.
func (v *View) step(ev *tcell.EventKey) float64 {
	if ev.Modifiers()&tcell.ModShift != 0 {
		return fineStep
	}
	return nudgeStep
}

// nudge rotates the selected knob by deg using a synthetic drag around its center.
func (v *View) nudge(deg float64) {
	id, ok := v.selectedID()
	if !ok || v.dragging != "" {
		return
	}
	center := bounds.Center(slot(v.selected))
	from := knob.Point{X: center.X + 1, Y: center.Y}
	rad := deg * math.Pi / 180
	to := knob.Point{X: center.X + math.Cos(rad), Y: center.Y - math.Sin(rad)}

	if _, err := v.board.Begin(id, from); err != nil {
		v.logger.Warn("nudge failed", "knob", id, "error", err)
		return
	}
	if _, err := v.board.Update(id, to); err != nil {
		v.logger.Warn("nudge failed", "knob", id, "error", err)
	}
	if err := v.board.End(id); err != nil {
		v.logger.Warn("nudge failed", "knob", id, "error", err)
	}
}

// commitEntry sends the typed value to the selected knob.
func (v *View) commitEntry() {
	text := string(v.entry)
	v.entry = v.entry[:0]
	id, ok := v.selectedID()
	if !ok {
		return
	}
	value, ok := control.ParseValue(text)
	if !ok {
		v.status = fmt.Sprintf("%q is not a number", text)
		return
	}
	changes, err := v.board.SetValue(id, value)
	if err != nil {
		v.logger.Warn("set value failed", "knob", id, "error", err)
		return
	}
	if len(changes) == 0 {
		v.status = id + " has no value range"
		return
	}
	v.status = fmt.Sprintf("%s set to %g", id, value)
}

// selectedID returns the id of the selected knob.
func (v *View) selectedID() (string, bool) {
	if v.selected < 0 || v.selected >= len(v.ids) {
		return "", false
	}
	return v.ids[v.selected], true
}

// isValueRune reports whether r can appear in a typed number.
func isValueRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		return true
	default:
		return false
	}
}
