package model

import (
	"fmt"
	"math"
	"strings"
)

// MetadataKey is the metadata entry napari-micromanager exports use to store
// widget state, including the acquisition save name.
const MetadataKey = "pymmcore_widgets"

// DefaultSequenceName is used when a sequence carries no save name.
const DefaultSequenceName = "Acquisition"

// Axis labels in canonical order.
const (
	AxisTime     = "t"
	AxisPosition = "p"
	AxisGrid     = "g"
	AxisChannel  = "c"
	AxisZ        = "z"
)

// axisOrder is the canonical iteration order for sequence axes.
var axisOrder = []string{AxisTime, AxisPosition, AxisGrid, AxisChannel, AxisZ}

var axisLabels = map[string]string{
	AxisTime:     "time points",
	AxisPosition: "positions",
	AxisGrid:     "grid points",
	AxisChannel:  "channels",
	AxisZ:        "z planes",
}

// TimePlan describes a fixed-interval time axis.
type TimePlan struct {
	IntervalSec float64 `json:"interval,omitempty" yaml:"interval,omitempty"`
	Loops       int     `json:"loops,omitempty" yaml:"loops,omitempty"`
}

// Channel names a channel preset and its exposure.
type Channel struct {
	Config     string  `json:"config" yaml:"config"`
	ExposureMS float64 `json:"exposure,omitempty" yaml:"exposure,omitempty"`
}

// Position is one stage position visited during a run. Z is optional; a nil
// Z means the focus axis is left where it is.
type Position struct {
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	X    float64  `json:"x" yaml:"x"`
	Y    float64  `json:"y" yaml:"y"`
	Z    *float64 `json:"z,omitempty" yaml:"z,omitempty"`
}

// GridPlan describes a rectangular grid of fields at each position.
type GridPlan struct {
	Rows    int `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns int `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Points returns the number of grid points, zero when the plan is empty.
func (g *GridPlan) Points() int {
	if g == nil || g.Rows <= 0 || g.Columns <= 0 {
		return 0
	}
	return g.Rows * g.Columns
}

// ZPlan describes the focus axis sweep. Either Range (centered) or
// Top/Bottom (absolute) together with Step define the planes.
type ZPlan struct {
	Range  float64 `json:"range,omitempty" yaml:"range,omitempty"`
	Top    float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Bottom float64 `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	Step   float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

// Planes returns the number of z planes, zero when the plan is empty.
func (z *ZPlan) Planes() int {
	if z == nil || z.Step <= 0 {
		return 0
	}
	span := z.Range
	if span == 0 {
		span = math.Abs(z.Top - z.Bottom)
	}
	if span < 0 {
		span = -span
	}
	return int(math.Floor(span/z.Step)) + 1
}

// FrameEvent identifies a single frame within a run by its axis indices.
// Sequences exported with an explicit event list carry these directly;
// otherwise they are enumerated from the declared plans.
type FrameEvent struct {
	Index         int     `json:"index" yaml:"index"`
	TimeIndex     int     `json:"t,omitempty" yaml:"t,omitempty"`
	PositionIndex int     `json:"p,omitempty" yaml:"p,omitempty"`
	GridIndex     int     `json:"g,omitempty" yaml:"g,omitempty"`
	ChannelIndex  int     `json:"c,omitempty" yaml:"c,omitempty"`
	ZIndex        int     `json:"z,omitempty" yaml:"z,omitempty"`
	Channel       string  `json:"channel,omitempty" yaml:"channel,omitempty"`
	PositionName  string  `json:"pos_name,omitempty" yaml:"pos_name,omitempty"`
	ExposureMS    float64 `json:"exposure,omitempty" yaml:"exposure,omitempty"`
	MinStartSec   float64 `json:"min_start_time,omitempty" yaml:"min_start_time,omitempty"`
}

// Sequence is a declarative description of a multi-dimensional acquisition.
// It is immutable once built: derived values are computed on demand and
// With* helpers return modified copies.
type Sequence struct {
	Metadata       map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	TimePlan       *TimePlan      `json:"time_plan,omitempty" yaml:"time_plan,omitempty"`
	StagePositions []Position     `json:"stage_positions,omitempty" yaml:"stage_positions,omitempty"`
	GridPlan       *GridPlan      `json:"grid_plan,omitempty" yaml:"grid_plan,omitempty"`
	Channels       []Channel      `json:"channels,omitempty" yaml:"channels,omitempty"`
	ZPlan          *ZPlan         `json:"z_plan,omitempty" yaml:"z_plan,omitempty"`

	// Events, when non-empty, replaces the declared plans: the sequence runs
	// exactly these frames and its shape is considered undeclared.
	Events []FrameEvent `json:"events,omitempty" yaml:"events,omitempty"`
}

// Name returns the acquisition save name stored by napari-micromanager,
// or DefaultSequenceName when absent.
func (s *Sequence) Name() string {
	meta, ok := s.Metadata[MetadataKey].(map[string]any)
	if !ok {
		return DefaultSequenceName
	}
	name, ok := meta["save_name"].(string)
	if !ok || name == "" {
		return DefaultSequenceName
	}
	return name
}

// Sizes returns the declared size of each axis, zero for absent axes.
func (s *Sequence) Sizes() map[string]int {
	sizes := map[string]int{
		AxisTime:     0,
		AxisPosition: len(s.StagePositions),
		AxisGrid:     s.GridPlan.Points(),
		AxisChannel:  len(s.Channels),
		AxisZ:        s.ZPlan.Planes(),
	}
	if s.TimePlan != nil && s.TimePlan.Loops > 0 {
		sizes[AxisTime] = s.TimePlan.Loops
	}
	return sizes
}

// Shape returns the nonzero axis sizes in canonical order, or nil when the
// shape is undeclared (explicit event list, or no axes at all).
func (s *Sequence) Shape() []int {
	if len(s.Events) > 0 {
		return nil
	}
	sizes := s.Sizes()
	var shape []int
	for _, axis := range axisOrder {
		if sizes[axis] > 0 {
			shape = append(shape, sizes[axis])
		}
	}
	return shape
}

// ExpectedFrames returns the total number of frames the run will produce:
// the product of the declared axis sizes, or the number of enumerated events
// when no shape is declared.
func (s *Sequence) ExpectedFrames() int {
	if shape := s.Shape(); len(shape) > 0 {
		total := 1
		for _, n := range shape {
			total *= n
		}
		return total
	}
	return len(s.EnumerateEvents())
}

// SizesSummary returns a human-readable axis-size summary such as
// "60 time points, 2 channels", or "single image" when no axis is declared.
func (s *Sequence) SizesSummary() string {
	sizes := s.Sizes()
	var parts []string
	for _, axis := range axisOrder {
		if n := sizes[axis]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, axisLabels[axis]))
		}
	}
	if len(parts) == 0 {
		return "single image"
	}
	return strings.Join(parts, ", ")
}

// EnumerateEvents expands the sequence into the ordered list of frames it
// will produce. An explicit event list is returned as-is (copied); declared
// plans are expanded in canonical axis order with absent axes contributing a
// single iteration.
func (s *Sequence) EnumerateEvents() []FrameEvent {
	if len(s.Events) > 0 {
		events := make([]FrameEvent, len(s.Events))
		copy(events, s.Events)
		return events
	}

	sizes := s.Sizes()
	span := func(axis string) int {
		if sizes[axis] > 0 {
			return sizes[axis]
		}
		return 1
	}

	var events []FrameEvent
	index := 0
	for t := 0; t < span(AxisTime); t++ {
		for p := 0; p < span(AxisPosition); p++ {
			for g := 0; g < span(AxisGrid); g++ {
				for c := 0; c < span(AxisChannel); c++ {
					for z := 0; z < span(AxisZ); z++ {
						ev := FrameEvent{
							Index:         index,
							TimeIndex:     t,
							PositionIndex: p,
							GridIndex:     g,
							ChannelIndex:  c,
							ZIndex:        z,
						}
						if c < len(s.Channels) {
							ev.Channel = s.Channels[c].Config
							ev.ExposureMS = s.Channels[c].ExposureMS
						}
						if p < len(s.StagePositions) {
							ev.PositionName = s.StagePositions[p].Name
						}
						if s.TimePlan != nil {
							ev.MinStartSec = float64(t) * s.TimePlan.IntervalSec
						}
						events = append(events, ev)
						index++
					}
				}
			}
		}
	}
	return events
}

// WithStagePositions returns a copy of the sequence with its stage positions
// replaced. The receiver is not modified.
func (s *Sequence) WithStagePositions(positions []Position) *Sequence {
	out := *s
	out.StagePositions = make([]Position, len(positions))
	copy(out.StagePositions, positions)
	return &out
}

// Summary returns the one-line description shown in the launcher window.
func (s *Sequence) Summary() string {
	total := "?"
	if n := s.ExpectedFrames(); n > 0 {
		total = fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("Sequence %q (%s), %s expected images", s.Name(), s.SizesSummary(), total)
}
