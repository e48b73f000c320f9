package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/mmctools/timelapse-launcher/internal/config"
	"github.com/mmctools/timelapse-launcher/internal/logging"
)

// SettingsDialog is the launcher settings dialog.
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	sequenceDirEntry  *widget.Entry
	outputDirEntry    *widget.Entry
	logLevelSelect    *widget.Select
	confirmCloseCheck *widget.Check
}

// NewSettingsDialog creates the settings dialog for the given window.
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		window:   window,
	}

	sd.createUI()
	return sd
}

// Show displays the dialog with the current settings loaded.
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.sequenceDirEntry = widget.NewEntry()
	sd.sequenceDirEntry.SetPlaceHolder("Sequence directory path")
	browseSeqBtn := widget.NewButton("Browse", func() { sd.onBrowseDirectory(sd.sequenceDirEntry) })
	sequenceDirRow := container.NewBorder(nil, nil, nil, browseSeqBtn, sd.sequenceDirEntry)

	sd.outputDirEntry = widget.NewEntry()
	sd.outputDirEntry.SetPlaceHolder("Acquisition output directory")
	browseOutBtn := widget.NewButton("Browse", func() { sd.onBrowseDirectory(sd.outputDirEntry) })
	outputDirRow := container.NewBorder(nil, nil, nil, browseOutBtn, sd.outputDirEntry)

	sd.logLevelSelect = widget.NewSelect(sd.settings.GetLogLevelOptions(), nil)

	sd.confirmCloseCheck = widget.NewCheck("Confirm before closing while a time-lapse is running", nil)

	form := container.NewVBox(
		widget.NewLabel("Acquisition Settings"),
		widget.NewSeparator(),

		widget.NewLabel("Sequence Directory:"),
		sequenceDirRow,

		widget.NewLabel("Output Directory:"),
		outputDirRow,

		widget.NewSeparator(),
		widget.NewLabel("Interface Settings"),
		widget.NewSeparator(),

		widget.NewLabel("Log Level:"),
		sd.logLevelSelect,

		sd.confirmCloseCheck,
	)

	sd.dialog = dialog.NewCustomConfirm(
		"Settings",
		"Save",
		"Cancel",
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(460, 380))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.sequenceDirEntry.SetText(sd.settings.GetSequenceDirectory())
	sd.outputDirEntry.SetText(sd.settings.GetOutputDirectory())
	sd.logLevelSelect.SetSelected(sd.settings.GetLogLevel())
	sd.confirmCloseCheck.SetChecked(sd.settings.GetConfirmCloseWhileRunning())
}

func (sd *SettingsDialog) onBrowseDirectory(target *widget.Entry) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		target.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.sequenceDirEntry.Text; dir != "" {
		sd.settings.SetSequenceDirectory(dir)
	}
	if dir := sd.outputDirEntry.Text; dir != "" {
		sd.settings.SetOutputDirectory(dir)
	}

	if level := sd.logLevelSelect.Selected; level != "" {
		sd.settings.SetLogLevel(level)
		if parsed, err := logging.ParseLevel(level); err == nil {
			logging.SetLevel(parsed)
		}
	}

	sd.settings.SetConfirmCloseWhileRunning(sd.confirmCloseCheck.Checked)
}
