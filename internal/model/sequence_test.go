package model

import (
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestSequence_Sizes(t *testing.T) {
	seq := &Sequence{
		TimePlan: &TimePlan{IntervalSec: 5, Loops: 60},
		Channels: []Channel{{Config: "DAPI"}, {Config: "FITC"}},
		StagePositions: []Position{
			{Name: "Pos1", X: 1, Y: 2},
			{Name: "Pos2", X: 3, Y: 4, Z: floatPtr(5)},
			{Name: "Pos3", X: 6, Y: 7},
		},
		GridPlan: &GridPlan{Rows: 2, Columns: 2},
		ZPlan:    &ZPlan{Range: 4, Step: 1},
	}

	sizes := seq.Sizes()
	expected := map[string]int{
		AxisTime:     60,
		AxisPosition: 3,
		AxisGrid:     4,
		AxisChannel:  2,
		AxisZ:        5,
	}

	for axis, want := range expected {
		if sizes[axis] != want {
			t.Errorf("Sizes()[%s] = %d, expected %d", axis, sizes[axis], want)
		}
	}
}

func TestSequence_ExpectedFrames_DeclaredShape(t *testing.T) {
	tests := []struct {
		name     string
		seq      *Sequence
		expected int
	}{
		{
			name:     "time only",
			seq:      &Sequence{TimePlan: &TimePlan{IntervalSec: 5, Loops: 60}},
			expected: 60,
		},
		{
			name: "time and channels",
			seq: &Sequence{
				TimePlan: &TimePlan{Loops: 10},
				Channels: []Channel{{Config: "DAPI"}, {Config: "FITC"}},
			},
			expected: 20,
		},
		{
			name: "all axes",
			seq: &Sequence{
				TimePlan:       &TimePlan{Loops: 3},
				StagePositions: []Position{{X: 0, Y: 0}, {X: 1, Y: 1}},
				GridPlan:       &GridPlan{Rows: 2, Columns: 3},
				Channels:       []Channel{{Config: "BF"}},
				ZPlan:          &ZPlan{Top: 10, Bottom: 8, Step: 1},
			},
			expected: 3 * 2 * 6 * 1 * 3,
		},
		{
			name:     "no axes declared",
			seq:      &Sequence{},
			expected: 1,
		},
	}

	for _, test := range tests {
		result := test.seq.ExpectedFrames()
		if result != test.expected {
			t.Errorf("%s: ExpectedFrames() = %d, expected %d", test.name, result, test.expected)
		}
	}
}

func TestSequence_ExpectedFrames_ExplicitEvents(t *testing.T) {
	seq := &Sequence{
		// Declared plans must be ignored when an event list is present.
		TimePlan: &TimePlan{Loops: 100},
		Events: []FrameEvent{
			{Index: 0, Channel: "DAPI"},
			{Index: 1, Channel: "FITC"},
			{Index: 2, Channel: "DAPI"},
		},
	}

	if shape := seq.Shape(); shape != nil {
		t.Errorf("Shape() = %v, expected nil for explicit event list", shape)
	}

	if n := seq.ExpectedFrames(); n != 3 {
		t.Errorf("ExpectedFrames() = %d, expected 3", n)
	}
}

func TestSequence_EnumerateEvents(t *testing.T) {
	seq := &Sequence{
		TimePlan:       &TimePlan{IntervalSec: 2, Loops: 2},
		StagePositions: []Position{{Name: "A", X: 0, Y: 0}, {Name: "B", X: 1, Y: 1}},
		Channels:       []Channel{{Config: "DAPI", ExposureMS: 20}},
	}

	events := seq.EnumerateEvents()
	if len(events) != 4 {
		t.Fatalf("EnumerateEvents() returned %d events, expected 4", len(events))
	}

	// Canonical order: time outermost, then position.
	if events[0].TimeIndex != 0 || events[0].PositionIndex != 0 {
		t.Errorf("event 0 indices = (t=%d, p=%d), expected (0, 0)", events[0].TimeIndex, events[0].PositionIndex)
	}
	if events[1].PositionIndex != 1 {
		t.Errorf("event 1 position index = %d, expected 1", events[1].PositionIndex)
	}
	if events[2].TimeIndex != 1 {
		t.Errorf("event 2 time index = %d, expected 1", events[2].TimeIndex)
	}

	if events[1].PositionName != "B" {
		t.Errorf("event 1 position name = %q, expected %q", events[1].PositionName, "B")
	}
	if events[0].Channel != "DAPI" || events[0].ExposureMS != 20 {
		t.Errorf("event 0 channel = %q/%.0fms, expected DAPI/20ms", events[0].Channel, events[0].ExposureMS)
	}
	if events[2].MinStartSec != 2 {
		t.Errorf("event 2 min start = %.1fs, expected 2.0s", events[2].MinStartSec)
	}

	for i, ev := range events {
		if ev.Index != i {
			t.Errorf("event %d has Index %d", i, ev.Index)
		}
	}
}

func TestSequence_SizesSummary(t *testing.T) {
	tests := []struct {
		name     string
		seq      *Sequence
		expected string
	}{
		{
			name:     "time only",
			seq:      &Sequence{TimePlan: &TimePlan{Loops: 60}},
			expected: "60 time points",
		},
		{
			name: "multiple axes in canonical order",
			seq: &Sequence{
				Channels:       []Channel{{Config: "DAPI"}, {Config: "FITC"}},
				TimePlan:       &TimePlan{Loops: 12},
				StagePositions: []Position{{X: 0, Y: 0}},
			},
			expected: "12 time points, 1 positions, 2 channels",
		},
		{
			name:     "no axes",
			seq:      &Sequence{},
			expected: "single image",
		},
	}

	for _, test := range tests {
		result := test.seq.SizesSummary()
		if result != test.expected {
			t.Errorf("%s: SizesSummary() = %q, expected %q", test.name, result, test.expected)
		}
	}
}

func TestSequence_Name(t *testing.T) {
	seq := &Sequence{
		Metadata: map[string]any{
			MetadataKey: map[string]any{"save_name": "overnight_tl"},
		},
	}
	if name := seq.Name(); name != "overnight_tl" {
		t.Errorf("Name() = %q, expected %q", name, "overnight_tl")
	}

	bare := &Sequence{}
	if name := bare.Name(); name != DefaultSequenceName {
		t.Errorf("Name() = %q, expected default %q", name, DefaultSequenceName)
	}
}

func TestSequence_WithStagePositions(t *testing.T) {
	original := &Sequence{
		TimePlan:       &TimePlan{Loops: 5},
		StagePositions: []Position{{Name: "old", X: 0, Y: 0}},
	}

	replaced := original.WithStagePositions([]Position{
		{Name: "new1", X: 10, Y: 20},
		{Name: "new2", X: 30, Y: 40, Z: floatPtr(7)},
	})

	if len(original.StagePositions) != 1 || original.StagePositions[0].Name != "old" {
		t.Error("WithStagePositions modified the original sequence")
	}
	if len(replaced.StagePositions) != 2 {
		t.Fatalf("replaced sequence has %d positions, expected 2", len(replaced.StagePositions))
	}
	if replaced.StagePositions[1].Z == nil || *replaced.StagePositions[1].Z != 7 {
		t.Error("replaced position lost its Z value")
	}
	if replaced.TimePlan.Loops != 5 {
		t.Error("replaced sequence lost its time plan")
	}
}

func TestZPlan_Planes(t *testing.T) {
	tests := []struct {
		name     string
		plan     *ZPlan
		expected int
	}{
		{"nil plan", nil, 0},
		{"zero step", &ZPlan{Range: 4}, 0},
		{"range form", &ZPlan{Range: 4, Step: 1}, 5},
		{"top bottom form", &ZPlan{Top: 10, Bottom: 7, Step: 1.5}, 3},
		{"inverted top bottom", &ZPlan{Top: 7, Bottom: 10, Step: 1.5}, 3},
	}

	for _, test := range tests {
		result := test.plan.Planes()
		if result != test.expected {
			t.Errorf("%s: Planes() = %d, expected %d", test.name, result, test.expected)
		}
	}
}
