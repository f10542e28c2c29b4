package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frudas24/knobslice/internal/board"
	"github.com/frudas24/knobslice/internal/bounds"
	"github.com/frudas24/knobslice/internal/knob"
)

// KnobSet is the result of loading a knob definition file.
type KnobSet struct {
	Definitions []board.Definition
	// Skipped holds one error per entry that could not be decoded.
	Skipped []error
	// Defaulted is true when the file was missing and DefaultKnobs was used.
	Defaulted bool
}

type knobFile struct {
	Knobs []yaml.Node `yaml:"knobs"`
}

type knobEntry struct {
	ID           string       `yaml:"id"`
	Root         string       `yaml:"root"`
	InitialAngle *yaml.Node   `yaml:"initial_angle"`
	DefaultRange bool         `yaml:"default_range"`
	Range        *rangeEntry  `yaml:"range"`
	Bounds       *bounds.Rect `yaml:"bounds"`
}

type rangeEntry struct {
	Min *stopEntry `yaml:"min"`
	Max *stopEntry `yaml:"max"`
}

type stopEntry struct {
	Angle *yaml.Node `yaml:"angle"`
	Value *yaml.Node `yaml:"value"`
}

// DefaultKnobs is the knob set served when no definition file exists.
func DefaultKnobs() []board.Definition {
	r := knob.DefaultRange()
	return []board.Definition{
		{
			ID:       "volume",
			Settings: knob.Settings{Root: "#volume", Range: &r},
			Bounds:   &bounds.Rect{X: 0, Y: 0, W: 200, H: 200},
		},
		{
			ID:       "dial",
			Settings: knob.Settings{Root: "#dial"},
			Bounds:   &bounds.Rect{X: 0, Y: 0, W: 200, H: 200},
		},
	}
}

// LoadKnobs reads knob definitions from a YAML file. Each entry is decoded on its own so a
// malformed entry lands in Skipped while the others load. A missing file yields DefaultKnobs.
func LoadKnobs(path string) (KnobSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return KnobSet{Definitions: DefaultKnobs(), Defaulted: true}, nil
		}
		return KnobSet{}, fmt.Errorf("read knob file: %w", err)
	}
	return ParseKnobs(data)
}

// ParseKnobs decodes knob definitions from YAML bytes.
func ParseKnobs(data []byte) (KnobSet, error) {
	var file knobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return KnobSet{}, fmt.Errorf("unmarshal yaml: %w", err)
	}

	var set KnobSet
	for i := range file.Knobs {
		node := &file.Knobs[i]
		def, err := decodeKnob(node)
		if err != nil {
			set.Skipped = append(set.Skipped, fmt.Errorf("knobs[%d] (line %d): %w", i, node.Line, err))
			continue
		}
		set.Definitions = append(set.Definitions, def)
	}
	return set, nil
}

// decodeKnob converts one YAML entry into a board definition.
func decodeKnob(node *yaml.Node) (board.Definition, error) {
	var entry knobEntry
	if err := node.Decode(&entry); err != nil {
		return board.Definition{}, err
	}

	def := board.Definition{
		ID:       entry.ID,
		Settings: knob.Settings{Root: entry.Root},
		Bounds:   entry.Bounds,
	}
	if def.ID == "" {
		def.ID = entry.Root
	}

	if entry.InitialAngle != nil {
		v, err := decodeNumber(entry.InitialAngle)
		if err != nil {
			return board.Definition{}, fmt.Errorf("%w: %v", knob.ErrInvalidInitialAngle, err)
		}
		def.Settings.InitialAngle = &v
	}

	switch {
	case entry.Range != nil:
		r, err := entry.Range.toRange()
		if err != nil {
			return board.Definition{}, err
		}
		def.Settings.Range = &r
	case entry.DefaultRange:
		r := knob.DefaultRange()
		def.Settings.Range = &r
	}

	return def, nil
}

// toRange converts a decoded range entry, requiring all four numbers.
func (e *rangeEntry) toRange() (knob.Range, error) {
	if e.Min == nil || e.Max == nil {
		return knob.Range{}, fmt.Errorf("%w: both min and max are required", knob.ErrInvalidRange)
	}
	minStop, err := e.Min.toStop("min")
	if err != nil {
		return knob.Range{}, err
	}
	maxStop, err := e.Max.toStop("max")
	if err != nil {
		return knob.Range{}, err
	}
	return knob.Range{Min: minStop, Max: maxStop}, nil
}

// toStop converts a decoded stop, naming the side in errors.
func (e *stopEntry) toStop(side string) (knob.Stop, error) {
	if e.Angle == nil || e.Value == nil {
		return knob.Stop{}, fmt.Errorf("%w: %s needs angle and value", knob.ErrInvalidRange, side)
	}
	angle, err := decodeNumber(e.Angle)
	if err != nil {
		return knob.Stop{}, fmt.Errorf("%w: %s.angle: %v", knob.ErrInvalidRange, side, err)
	}
	value, err := decodeNumber(e.Value)
	if err != nil {
		return knob.Stop{}, fmt.Errorf("%w: %s.value: %v", knob.ErrInvalidRange, side, err)
	}
	return knob.Stop{Angle: angle, Value: value}, nil
}

// decodeNumber decodes a scalar node as a float.
func decodeNumber(node *yaml.Node) (float64, error) {
	if node.Kind != yaml.ScalarNode {
		return 0, fmt.Errorf("line %d: expected a number", node.Line)
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return 0, fmt.Errorf("line %d: %q is not a number", node.Line, node.Value)
	}
	return v, nil
}
