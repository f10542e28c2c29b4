package control

import (
	"math"
	"strconv"
	"strings"
)

// ParseValue parses text typed into a knob value field. Empty, non-numeric and
// non-finite input is rejected.
func ParseValue(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
