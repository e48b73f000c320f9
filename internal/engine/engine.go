package engine

import (
	"github.com/mmctools/timelapse-launcher/internal/model"
)

// CoreDeviceLabel is the label of the always-present core device. An engine
// reporting only this device has no real hardware configuration loaded.
const CoreDeviceLabel = "Core"

// Engine describes an acquisition engine driving a Micro-Manager style
// microscope. Implementations execute runs on a background goroutine and
// deliver lifecycle notifications through Events; all query and command
// methods must be safe for concurrent use.
type Engine interface {
	// IsRunning reports whether an acquisition is currently executing.
	IsRunning() bool

	// LoadedDevices returns the labels of all loaded devices, including
	// the core device.
	LoadedDevices() []string

	// FocusDevice returns the label of the currently selected focus drive,
	// or an empty string when none is selected.
	FocusDevice() string

	// Run submits a sequence for execution. The output argument is an
	// optional destination directory for acquired data; empty means the
	// engine's default. Run returns immediately after submission; a non-nil
	// error means the submission itself was rejected and no started
	// notification will follow.
	Run(seq *model.Sequence, output string) error

	// Cancel requests cancellation of the running acquisition. The run is
	// canceled only once the engine emits the canceled notification.
	Cancel() error

	// XYPosition returns the current stage position in micrometers.
	XYPosition() (x, y float64, err error)

	// SetXYPosition moves the stage to the given position.
	SetXYPosition(x, y float64) error

	// Position returns the current focus-axis position in micrometers.
	// It fails when no focus device is selected.
	Position() (float64, error)

	// SetPosition moves the focus axis to the given position.
	SetPosition(z float64) error

	// AvailableChannelConfigs returns the channel preset names defined by
	// the loaded configuration.
	AvailableChannelConfigs() []string

	// Exposure returns the camera exposure in milliseconds.
	Exposure() (float64, error)

	// Events returns the engine's lifecycle notification hub.
	Events() *Events
}
