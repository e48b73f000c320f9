// Package sim implements the engine contract against simulated hardware.
// It loads a Micro-Manager style .cfg device file, executes sequences on a
// background goroutine, and emits the same lifecycle notifications a real
// engine would. The launcher uses it as its default engine; tests use it as
// a realistic double.
package sim

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/logging"
	"github.com/mmctools/timelapse-launcher/internal/model"
)

// DefaultFrameInterval is the simulated exposure-plus-readout time per frame.
const DefaultFrameInterval = 25 * time.Millisecond

// DefaultExposureMS is the camera exposure reported before any sequence sets one.
const DefaultExposureMS = 20.0

// Engine is a simulated acquisition engine. The zero value is not usable;
// create instances with New.
type Engine struct {
	mu            sync.Mutex
	devices       []string
	focusDevice   string
	channels      []string
	stageX        float64
	stageY        float64
	stageZ        float64
	exposureMS    float64
	frameInterval time.Duration
	running       bool
	cancelRun     context.CancelFunc

	events *engine.Events
	log    *logging.Logger
}

// Option configures the simulated engine.
type Option func(*Engine)

// WithFrameInterval sets the simulated per-frame duration.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) { e.frameInterval = d }
}

// New creates a simulated engine with only the core device loaded. Load a
// configuration file to add devices and select a focus drive.
func New(opts ...Option) *Engine {
	e := &Engine{
		devices:       []string{engine.CoreDeviceLabel},
		exposureMS:    DefaultExposureMS,
		frameInterval: DefaultFrameInterval,
		events:        engine.NewEvents(),
		log:           logging.With("component", "sim-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadSystemConfiguration reads a Micro-Manager style .cfg file and loads
// the devices it declares. Recognized lines:
//
//	Device,<label>,<library>,<name>
//	Property,Core,Focus,<label>
//	ConfigGroup,Channel,<preset>,...
//
// Unknown lines and comments (leading #) are ignored, matching how much of
// a real config file is irrelevant to the launcher.
func (e *Engine) LoadSystemConfiguration(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open configuration: %w", err)
	}
	defer f.Close()

	var devices []string
	var focus string
	channelSet := map[string]bool{}
	var channels []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		switch fields[0] {
		case "Device":
			if len(fields) >= 2 && fields[1] != "" {
				devices = append(devices, fields[1])
			}
		case "Property":
			if len(fields) >= 4 && fields[1] == engine.CoreDeviceLabel && fields[2] == "Focus" {
				focus = fields[3]
			}
		case "ConfigGroup":
			if len(fields) >= 3 && fields[1] == "Channel" && !channelSet[fields[2]] {
				channelSet[fields[2]] = true
				channels = append(channels, fields[2])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read configuration: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.devices = append([]string{engine.CoreDeviceLabel}, devices...)
	e.focusDevice = focus
	e.channels = channels
	e.log.Info("configuration loaded", "path", path, "devices", len(e.devices), "focus", focus)
	return nil
}

// IsRunning reports whether a simulated acquisition is executing.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// LoadedDevices returns the labels of all loaded devices.
func (e *Engine) LoadedDevices() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.devices))
	copy(out, e.devices)
	return out
}

// FocusDevice returns the selected focus drive label, empty if none.
func (e *Engine) FocusDevice() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focusDevice
}

// SetFocusDevice selects a focus drive. It must be a loaded device.
func (e *Engine) SetFocusDevice(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range e.devices {
		if d == label {
			e.focusDevice = label
			return nil
		}
	}
	return fmt.Errorf("no loaded device with label %q", label)
}

// AvailableChannelConfigs returns the channel presets of the loaded configuration.
func (e *Engine) AvailableChannelConfigs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.channels))
	copy(out, e.channels)
	return out
}

// Exposure returns the simulated camera exposure in milliseconds.
func (e *Engine) Exposure() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exposureMS, nil
}

// XYPosition returns the simulated stage position.
func (e *Engine) XYPosition() (float64, float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stageX, e.stageY, nil
}

// SetXYPosition moves the simulated stage.
func (e *Engine) SetXYPosition(x, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stageX, e.stageY = x, y
	return nil
}

// Position returns the simulated focus-axis position. It fails when no
// focus drive is selected, mirroring the real engine's behavior.
func (e *Engine) Position() (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.focusDevice == "" {
		return 0, fmt.Errorf(`No device with label ""`)
	}
	return e.stageZ, nil
}

// SetPosition moves the simulated focus axis.
func (e *Engine) SetPosition(z float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.focusDevice == "" {
		return fmt.Errorf(`No device with label ""`)
	}
	e.stageZ = z
	return nil
}

// Events returns the lifecycle notification hub.
func (e *Engine) Events() *engine.Events {
	return e.events
}

// Run submits a sequence for simulated execution. Submission fails when a
// run is already executing or no focus drive is selected; otherwise the run
// proceeds on a background goroutine and the started notification follows.
func (e *Engine) Run(seq *model.Sequence, output string) error {
	if seq == nil {
		return engine.NewError(engine.KindRunRequestFailed, "no sequence provided")
	}

	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return engine.NewError(engine.KindAlreadyRunning, "an acquisition is already running")
	}
	if e.focusDevice == "" {
		e.mu.Unlock()
		// Same failure text a real core produces when no focus drive is set.
		return fmt.Errorf(`No device with label ""`)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.running = true
	e.cancelRun = cancel
	interval := e.frameInterval
	e.mu.Unlock()

	runID := newRunID()
	e.log.Info("run submitted", "run", runID, "frames", seq.ExpectedFrames(), "output", output)

	go e.execute(ctx, seq, runID, interval)
	return nil
}

// Cancel requests cancellation of the running acquisition. It is a no-op
// when nothing is running.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	cancel := e.cancelRun
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (e *Engine) execute(ctx context.Context, seq *model.Sequence, runID string, interval time.Duration) {
	defer func() {
		e.mu.Lock()
		e.running = false
		e.cancelRun = nil
		e.mu.Unlock()
	}()

	e.events.EmitSequenceStarted(seq)

	for _, ev := range seq.EnumerateEvents() {
		select {
		case <-ctx.Done():
			e.log.Info("run canceled", "run", runID, "at_frame", ev.Index)
			e.events.EmitSequenceCanceled(seq)
			return
		case <-time.After(interval):
		}

		e.events.EmitFrameReady(engine.Frame{
			Pixels: synthFrame(ev),
			Event:  ev,
			Metadata: map[string]string{
				"run_id":  runID,
				"channel": ev.Channel,
			},
		})
	}

	e.log.Info("run finished", "run", runID)
	e.events.EmitSequenceFinished(seq)
}

// synthFrame produces a tiny deterministic gradient so subscribers have real
// pixel data to hand on.
func synthFrame(ev model.FrameEvent) []uint16 {
	const side = 8
	pixels := make([]uint16, side*side)
	for i := range pixels {
		pixels[i] = uint16((i + ev.Index) % (1 << 12))
	}
	return pixels
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
