package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// Draw renders every knob, the entry line and the status line.
func (v *View) Draw() {
	v.screen.Clear()
	for i, st := range v.board.Snapshot() {
		v.drawKnob(i, st)
	}
	_, h := v.screen.Size()
	if len(v.entry) > 0 {
		drawText(v.screen, marginX, h-2, styleSelected, "value> "+string(v.entry))
	}
	drawText(v.screen, marginX, h-1, styleStatus, v.status)
	v.screen.Show()
}

// drawKnob draws the ring, the indicator and the label of one knob.
func (v *View) drawKnob(i int, st board.KnobState) {
	r := slot(i)
	c := bounds.Center(r)
	radius := r.W/2 - 1

	for deg := 0.0; deg < 360; deg += 10 {
		col, row := cellAt(c, radius, deg)
		v.screen.SetContent(col, row, '·', nil, styleRing)
	}
	heading := math.Mod(st.Angle, 360)
	for d := 1.0; d < radius; d++ {
		col, row := cellAt(c, d, heading)
		v.screen.SetContent(col, row, '●', nil, styleIndicator)
	}

	label := styleLabel
	if i == v.selected {
		label = styleSelected
	}
	top := int(r.Y+r.H)/cellRatio + 1
	left := int(r.X)
	drawText(v.screen, left, top, label, st.ID)
	detail := fmt.Sprintf("%.1f°", st.Angle)
	if st.HasValue {
		detail = fmt.Sprintf("%.2f (%.0f°)", st.Value, st.Angle)
	}
	if st.Revolutions != 0 {
		detail += fmt.Sprintf(" r%+d", st.Revolutions)
	}
	drawText(v.screen, left, top+1, styleLabel, detail)
}

// cellAt returns the cell at distance d from c along angle deg.
func cellAt(c knob.Point, d, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	x := c.X + d*math.Cos(rad)
	y := c.Y - d*math.Sin(rad)
	return int(math.Floor(x)), int(math.Floor(y / cellRatio))
}

// drawText writes s starting at (x, y).
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
