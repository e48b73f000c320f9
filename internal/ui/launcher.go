package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/mmctools/timelapse-launcher/internal/acquire"
	"github.com/mmctools/timelapse-launcher/internal/config"
	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/logging"
	"github.com/mmctools/timelapse-launcher/internal/model"
	"github.com/mmctools/timelapse-launcher/internal/sequence"
)

// LauncherUI is the main launcher window: sequence details, readiness
// status, and the start/stop controls for the acquisition controller.
type LauncherUI struct {
	window   fyne.Window
	app      fyne.App
	eng      engine.Engine
	settings *config.Settings
	log      *logging.Logger

	controller *acquire.Controller
	seqPath    string

	sequenceLabel *widget.Label
	summaryLabel  *widget.Label
	statusLabel   *widget.Label
	progress      *widget.ProgressBar
	startBtn      *widget.Button
	stopBtn       *widget.Button
	channelSelect *widget.Select
}

// NewLauncherUI creates and lays out the launcher window bound to the given
// engine. The controller's status callbacks are marshaled onto the Fyne
// event loop; nothing else may touch the widgets.
func NewLauncherUI(window fyne.Window, app fyne.App, eng engine.Engine) *LauncherUI {
	ui := &LauncherUI{
		window:   window,
		app:      app,
		eng:      eng,
		settings: config.NewSettings(app),
		log:      logging.With("component", "ui"),
	}

	ui.controller = acquire.New(eng, nil,
		acquire.WithNotifier(func(fn func()) { fyne.Do(fn) }),
		acquire.WithStatusFunc(ui.applyStatus),
		acquire.WithOutput(ui.settings.GetOutputDirectory()),
	)

	ui.buildLayout()
	window.SetCloseIntercept(ui.onClose)
	return ui
}

func (ui *LauncherUI) buildLayout() {
	ui.sequenceLabel = widget.NewLabel("No sequence loaded")
	ui.sequenceLabel.Wrapping = fyne.TextWrapWord
	ui.summaryLabel = widget.NewLabel(DashPlaceholder)
	ui.summaryLabel.Wrapping = fyne.TextWrapWord
	ui.statusLabel = widget.NewLabel(ui.controller.StatusText())
	ui.statusLabel.Wrapping = fyne.TextWrapWord

	ui.progress = widget.NewProgressBar()
	ui.progress.Hide()

	ui.startBtn = widget.NewButton(LabelStart, ui.onStart)
	ui.startBtn.Importance = widget.HighImportance
	ui.startBtn.Disable()
	ui.stopBtn = widget.NewButton(LabelStop, ui.onStop)
	ui.stopBtn.Disable()

	openBtn := widget.NewButton(LabelOpenSequence, ui.onOpenSequence)
	positionsBtn := widget.NewButton(LabelEditPositions, ui.onEditPositions)
	settingsBtn := widget.NewButton(LabelSettings, ui.onSettings)

	channels := ui.eng.AvailableChannelConfigs()
	if len(channels) == 0 {
		channels = []string{"(none)"}
	}
	ui.channelSelect = widget.NewSelect(channels, nil)
	ui.channelSelect.PlaceHolder = "Channel preset"
	buildBtn := widget.NewButton(LabelBuildSimple, ui.onBuildSimple)

	content := container.NewVBox(
		ui.sequenceLabel,
		ui.summaryLabel,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, openBtn, positionsBtn),
		container.NewGridWithColumns(2, ui.channelSelect, buildBtn),
		widget.NewSeparator(),
		container.NewGridWithColumns(2, ui.startBtn, ui.stopBtn),
		ui.progress,
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, settingsBtn, ui.statusLabel),
	)

	ui.window.SetContent(container.NewPadded(content))
	ui.window.Resize(fyne.NewSize(LauncherWidth, LauncherHeight))
}

// SetSequence rebinds the launcher (and its controller) to a new sequence.
// An empty path means the sequence was built in-app rather than loaded.
func (ui *LauncherUI) SetSequence(seq *model.Sequence, path string) {
	if err := ui.controller.SetSequence(seq); err != nil {
		dialog.ShowError(err, ui.window)
		return
	}
	ui.seqPath = path

	if path != "" {
		ui.controller.SetSourceName(filepath.Base(path))
		ui.settings.SetLastSequenceFile(path)
		ui.sequenceLabel.SetText(path)
	} else {
		ui.sequenceLabel.SetText(fmt.Sprintf("Built in-app: %s", seq.Name()))
	}
	ui.summaryLabel.SetText(seq.Summary())
	ui.statusLabel.SetText(ui.controller.StatusText())
	ui.progress.Hide()
	ui.startBtn.Enable()
	ui.stopBtn.Disable()
}

// applyStatus renders a controller status snapshot. It always runs on the
// Fyne event loop via the controller's notifier.
func (ui *LauncherUI) applyStatus(status acquire.Status) {
	ui.statusLabel.SetText(status.Text)

	switch status.State {
	case model.RunStateRunning:
		ui.startBtn.Disable()
		ui.stopBtn.Enable()
		if status.FramesTotal > 0 {
			ui.progress.Max = float64(status.FramesTotal)
			ui.progress.SetValue(float64(status.FramesDone))
			ui.progress.Show()
		}
	default:
		ui.startBtn.Enable()
		ui.stopBtn.Disable()
		if status.State == model.RunStateCompleted && status.FramesTotal > 0 {
			ui.progress.SetValue(float64(status.FramesTotal))
		}
	}
}

func (ui *LauncherUI) onStart() {
	ui.statusLabel.SetText("Starting time-lapse...")
	if err := ui.controller.Start(); err != nil {
		ui.reportStartError(err)
	}
}

func (ui *LauncherUI) reportStartError(err error) {
	switch {
	case engine.IsKind(err, engine.KindAlreadyRunning):
		dialog.ShowInformation(TitleStillRunning, "A time-lapse is already running.", ui.window)
		ui.statusLabel.SetText(ui.controller.StatusText())
	case engine.IsKind(err, engine.KindConfigurationMissing):
		dialog.ShowInformation(TitleNotReady, fmt.Sprintf(
			"Cannot start the time-lapse:\n\n%v\n\nLoad your Micro-Manager configuration (or pass --mm-config)\nand ensure a focus drive is selected, then try again.", err),
			ui.window)
		ui.statusLabel.SetText("Micro-Manager configuration missing.")
	default:
		ui.log.Error("cannot start time-lapse", "err", err)
		dialog.ShowError(fmt.Errorf("cannot start the time-lapse:\n%v", err), ui.window)
		ui.statusLabel.SetText("Failed to start the time-lapse.")
	}
}

func (ui *LauncherUI) onStop() {
	if err := ui.controller.Cancel(); err != nil {
		dialog.ShowError(fmt.Errorf("cannot cancel acquisition:\n%v", err), ui.window)
		return
	}
	// Canceled state arrives with the engine's notification, not here.
	ui.statusLabel.SetText("Cancel requested...")
}

// PromptForSequence opens the sequence file dialog, the same one the Open
// button shows. The CLI schedules it on startup when no sequence was given.
func (ui *LauncherUI) PromptForSequence() {
	ui.onOpenSequence()
}

func (ui *LauncherUI) onOpenSequence() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		_ = reader.Close()

		if !sequence.IsSequenceFile(path) {
			dialog.ShowInformation(TitleLauncher,
				fmt.Sprintf("%s is not a sequence file (expected %s).", path, strings.Join(sequence.Extensions, ", ")),
				ui.window)
			return
		}
		seq, err := sequence.Load(path)
		if err != nil {
			ui.log.Error("failed to read sequence file", "path", path, "err", err)
			dialog.ShowError(fmt.Errorf("cannot load %s:\n%v", path, err), ui.window)
			return
		}
		ui.SetSequence(seq, path)
	}, ui.window)

	open.SetFilter(storage.NewExtensionFileFilter([]string{".json", ".yaml", ".yml"}))
	if lister, err := storage.ListerForURI(storage.NewFileURI(ui.settings.GetSequenceDirectory())); err == nil {
		open.SetLocation(lister)
	}
	open.Show()
}

func (ui *LauncherUI) onBuildSimple() {
	channel := ui.channelSelect.Selected
	if channel == "" || channel == "(none)" {
		dialog.ShowInformation(TitleLauncher, "No channel preset selected.", ui.window)
		return
	}

	exposure, err := ui.eng.Exposure()
	if err != nil || exposure <= 0 {
		exposure = 20.0
	}
	seq := sequence.BuildSimpleTimelapse(channel, exposure)
	ui.SetSequence(seq, "")
	ui.statusLabel.SetText(fmt.Sprintf("Built time-lapse: channel=%s, exposure=%.1f ms", channel, exposure))
}

func (ui *LauncherUI) onEditPositions() {
	seq := ui.controller.Sequence()
	if seq == nil {
		dialog.ShowInformation(TitlePositions, "Load or build a sequence first.", ui.window)
		return
	}
	ShowPositionsEditor(ui.app, ui.eng, seq, ui.seqPath, func(updated *model.Sequence, path string) {
		fyne.Do(func() { ui.SetSequence(updated, path) })
	})
}

func (ui *LauncherUI) onSettings() {
	NewSettingsDialog(ui.settings, ui.window).Show()
}

func (ui *LauncherUI) onClose() {
	if ui.controller.State() == model.RunStateRunning && ui.settings.GetConfirmCloseWhileRunning() {
		dialog.ShowConfirm(TitleStillRunning, "A time-lapse is still running. Close anyway?", func(ok bool) {
			if ok {
				ui.shutdown()
			}
		}, ui.window)
		return
	}
	ui.shutdown()
}

// shutdown detaches the controller from the engine before the window goes
// away so no engine callback fires into destroyed widgets.
func (ui *LauncherUI) shutdown() {
	ui.controller.Close()
	ui.window.Close()
}
