// Package positions implements the coordinate bookkeeping behind the stage
// position editor: converting between a sequence's stage positions and
// editable table rows, capturing the current stage location, and driving the
// stage to a selected row. Applying rows produces a new sequence value.
package positions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/model"
)

// Row is one editable stage position. Z is optional; nil means the focus
// axis is not part of this position.
type Row struct {
	Name string
	X    float64
	Y    float64
	Z    *float64
}

// Position converts the row into a sequence stage position.
func (r Row) Position() model.Position {
	return model.Position{Name: r.Name, X: r.X, Y: r.Y, Z: r.Z}
}

// ZText returns the Z column's display text, empty when Z is unset.
func (r Row) ZText() string {
	if r.Z == nil {
		return ""
	}
	return strconv.FormatFloat(*r.Z, 'f', -1, 64)
}

// FromSequence extracts the sequence's stage positions as editable rows.
func FromSequence(seq *model.Sequence) []Row {
	rows := make([]Row, 0, len(seq.StagePositions))
	for _, pos := range seq.StagePositions {
		rows = append(rows, Row{Name: pos.Name, X: pos.X, Y: pos.Y, Z: pos.Z})
	}
	return rows
}

// Apply returns a copy of the sequence with its stage positions replaced by
// the given rows. The input sequence is not modified.
func Apply(seq *model.Sequence, rows []Row) *model.Sequence {
	positions := make([]model.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.Position())
	}
	return seq.WithStagePositions(positions)
}

// ParseRow builds a row from table cell text. X and Y are required; an
// empty Z cell means no focus position, and an unparseable Z is treated the
// same way since a stale cell must not silently move the focus drive.
func ParseRow(name, x, y, z string) (Row, error) {
	xVal, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid X value %q", x)
	}
	yVal, err := strconv.ParseFloat(strings.TrimSpace(y), 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid Y value %q", y)
	}

	row := Row{Name: strings.TrimSpace(name), X: xVal, Y: yVal}
	if trimmed := strings.TrimSpace(z); trimmed != "" {
		if zVal, err := strconv.ParseFloat(trimmed, 64); err == nil {
			row.Z = &zVal
		}
	}
	return row, nil
}

// ReplaceRow parses edited cell text and overwrites the row at idx. The
// row is left untouched when any required cell fails to parse.
func ReplaceRow(rows []Row, idx int, name, x, y, z string) error {
	if idx < 0 || idx >= len(rows) {
		return fmt.Errorf("no position selected")
	}
	row, err := ParseRow(name, x, y, z)
	if err != nil {
		return err
	}
	rows[idx] = row
	return nil
}

// CaptureCurrent reads the current stage location as a new row. The focus
// position is included only when a focus drive is selected; a focus read
// failure degrades to an XY-only row rather than failing the capture.
func CaptureCurrent(eng engine.Engine, name string, existing int) (Row, error) {
	x, y, err := eng.XYPosition()
	if err != nil {
		return Row{}, fmt.Errorf("read stage position: %w", err)
	}

	if name == "" {
		name = fmt.Sprintf("Pos%d", existing+1)
	}
	row := Row{Name: name, X: x, Y: y}

	if eng.FocusDevice() != "" {
		if z, err := eng.Position(); err == nil {
			row.Z = &z
		}
	}
	return row, nil
}

// UpdateFromStage overwrites the row at idx with the current stage location.
func UpdateFromStage(eng engine.Engine, rows []Row, idx int) error {
	if idx < 0 || idx >= len(rows) {
		return fmt.Errorf("no position selected")
	}
	updated, err := CaptureCurrent(eng, rows[idx].Name, idx)
	if err != nil {
		return err
	}
	rows[idx] = updated
	return nil
}

// GoTo moves the stage to the row's position. A focus move failure is
// ignored; the XY move has already happened at that point.
func GoTo(eng engine.Engine, row Row) error {
	if err := eng.SetXYPosition(row.X, row.Y); err != nil {
		return fmt.Errorf("move stage: %w", err)
	}
	if row.Z != nil {
		_ = eng.SetPosition(*row.Z)
	}
	return nil
}
