package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/logging"
	"github.com/mmctools/timelapse-launcher/internal/model"
	"github.com/mmctools/timelapse-launcher/internal/positions"
	"github.com/mmctools/timelapse-launcher/internal/sequence"
)

// positionsEditor is the stage position editor window. It edits a copy of
// the sequence's positions; nothing reaches the launcher until Apply.
type positionsEditor struct {
	window fyne.Window
	eng    engine.Engine
	log    *logging.Logger

	seq     *model.Sequence
	seqPath string
	onApply func(*model.Sequence, string)

	rows     []positions.Row
	selected int

	table *widget.Table
}

var positionColumns = []string{"Name", "X (µm)", "Y (µm)", "Z (µm)"}

// ShowPositionsEditor opens the stage position editor for the given
// sequence. onApply receives the updated sequence (and its file path, empty
// if never saved) when the operator applies the edits.
func ShowPositionsEditor(app fyne.App, eng engine.Engine, seq *model.Sequence, seqPath string, onApply func(*model.Sequence, string)) {
	pe := &positionsEditor{
		window:   app.NewWindow(TitlePositions),
		eng:      eng,
		log:      logging.With("component", "positions-editor"),
		seq:      seq,
		seqPath:  seqPath,
		onApply:  onApply,
		rows:     positions.FromSequence(seq),
		selected: -1,
	}

	pe.buildLayout()
	pe.window.Show()
}

func (pe *positionsEditor) buildLayout() {
	pe.table = widget.NewTable(
		func() (int, int) { return len(pe.rows) + 1, len(positionColumns) },
		func() fyne.CanvasObject { return widget.NewLabel("Pos999") },
		pe.updateCell,
	)
	pe.table.OnSelected = func(id widget.TableCellID) {
		if id.Row > 0 {
			pe.selected = id.Row - 1
		}
	}
	for col, width := range []float32{120, 100, 100, 100} {
		pe.table.SetColumnWidth(col, width)
	}

	addBtn := widget.NewButton("Add current", pe.onAddCurrent)
	editBtn := widget.NewButton("Edit…", pe.onEditRow)
	updateBtn := widget.NewButton("Update from stage", pe.onUpdateFromStage)
	goToBtn := widget.NewButton("Go to", pe.onGoTo)
	removeBtn := widget.NewButton("Remove", pe.onRemove)

	saveBtn := widget.NewButton("Save", pe.onSave)
	saveAsBtn := widget.NewButton("Save as…", pe.onSaveAs)
	applyBtn := widget.NewButton("Apply", pe.onApplyClicked)
	applyBtn.Importance = widget.HighImportance

	toolbar := container.NewGridWithColumns(5, addBtn, editBtn, updateBtn, goToBtn, removeBtn)
	footer := container.NewGridWithColumns(3, saveBtn, saveAsBtn, applyBtn)

	pe.window.SetContent(container.NewBorder(toolbar, footer, nil, nil, pe.table))
	pe.window.Resize(fyne.NewSize(PositionsWidth, PositionsHeight))
}

func (pe *positionsEditor) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	label := obj.(*widget.Label)
	if id.Row == 0 {
		label.TextStyle = fyne.TextStyle{Bold: true}
		label.SetText(positionColumns[id.Col])
		return
	}
	label.TextStyle = fyne.TextStyle{}

	row := pe.rows[id.Row-1]
	switch id.Col {
	case 0:
		label.SetText(row.Name)
	case 1:
		label.SetText(strconv.FormatFloat(row.X, 'f', 2, 64))
	case 2:
		label.SetText(strconv.FormatFloat(row.Y, 'f', 2, 64))
	case 3:
		text := row.ZText()
		if text == "" {
			text = DashPlaceholder
		}
		label.SetText(text)
	}
}

func (pe *positionsEditor) onAddCurrent() {
	row, err := positions.CaptureCurrent(pe.eng, "", len(pe.rows))
	if err != nil {
		dialog.ShowError(fmt.Errorf("cannot read the stage position:\n%v", err), pe.window)
		return
	}
	pe.rows = append(pe.rows, row)
	pe.table.Refresh()
}

// onEditRow opens a form prefilled with the selected row's cells and writes
// the edited text back through the row parser.
func (pe *positionsEditor) onEditRow() {
	if pe.selected < 0 || pe.selected >= len(pe.rows) {
		dialog.ShowInformation(TitlePositions, "No position selected.", pe.window)
		return
	}
	idx := pe.selected
	row := pe.rows[idx]

	nameEntry := widget.NewEntry()
	nameEntry.SetText(row.Name)
	xEntry := widget.NewEntry()
	xEntry.SetText(strconv.FormatFloat(row.X, 'f', -1, 64))
	yEntry := widget.NewEntry()
	yEntry.SetText(strconv.FormatFloat(row.Y, 'f', -1, 64))
	zEntry := widget.NewEntry()
	zEntry.SetText(row.ZText())
	zEntry.SetPlaceHolder("empty = keep focus")

	items := []*widget.FormItem{
		widget.NewFormItem("Name", nameEntry),
		widget.NewFormItem("X (µm)", xEntry),
		widget.NewFormItem("Y (µm)", yEntry),
		widget.NewFormItem("Z (µm)", zEntry),
	}
	dialog.ShowForm("Edit position", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if err := positions.ReplaceRow(pe.rows, idx, nameEntry.Text, xEntry.Text, yEntry.Text, zEntry.Text); err != nil {
			dialog.ShowError(err, pe.window)
			return
		}
		pe.table.Refresh()
	}, pe.window)
}

func (pe *positionsEditor) onUpdateFromStage() {
	if err := positions.UpdateFromStage(pe.eng, pe.rows, pe.selected); err != nil {
		dialog.ShowError(err, pe.window)
		return
	}
	pe.table.Refresh()
}

func (pe *positionsEditor) onGoTo() {
	if pe.selected < 0 || pe.selected >= len(pe.rows) {
		dialog.ShowInformation(TitlePositions, "No position selected.", pe.window)
		return
	}
	row := pe.rows[pe.selected]
	if err := positions.GoTo(pe.eng, row); err != nil {
		dialog.ShowError(fmt.Errorf("cannot move the stage:\n%v", err), pe.window)
		return
	}
	pe.log.Info("moved stage to position", "name", row.Name, "x", row.X, "y", row.Y)
}

func (pe *positionsEditor) onRemove() {
	if pe.selected < 0 || pe.selected >= len(pe.rows) {
		return
	}
	pe.rows = append(pe.rows[:pe.selected], pe.rows[pe.selected+1:]...)
	pe.selected = -1
	pe.table.Refresh()
}

// onSave writes the edited positions back to the loaded sequence file. A
// sequence built in-app has no path yet and falls through to Save-as.
func (pe *positionsEditor) onSave() {
	if pe.seqPath == "" {
		pe.onSaveAs()
		return
	}

	updated := positions.Apply(pe.seq, pe.rows)
	if err := sequence.Save(pe.seqPath, updated); err != nil {
		pe.log.Error("failed to write sequence file", "path", pe.seqPath, "err", err)
		dialog.ShowError(fmt.Errorf("cannot save %s:\n%v", pe.seqPath, err), pe.window)
		return
	}
	pe.seq = updated
}

func (pe *positionsEditor) onSaveAs() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, pe.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		_ = writer.Close()

		updated := positions.Apply(pe.seq, pe.rows)
		if err := sequence.Save(path, updated); err != nil {
			pe.log.Error("failed to write sequence file", "path", path, "err", err)
			dialog.ShowError(fmt.Errorf("cannot save %s:\n%v", path, err), pe.window)
			return
		}
		pe.seq = updated
		pe.seqPath = path
	}, pe.window)

	save.SetFilter(storage.NewExtensionFileFilter([]string{".json", ".yaml", ".yml"}))
	save.SetFileName(pe.seq.Name() + sequence.Extensions[0])
	save.Show()
}

func (pe *positionsEditor) onApplyClicked() {
	updated := positions.Apply(pe.seq, pe.rows)
	if pe.onApply != nil {
		pe.onApply(updated, pe.seqPath)
	}
	pe.window.Close()
}
