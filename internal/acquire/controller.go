package acquire

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mmctools/timelapse-launcher/internal/engine"
	"github.com/mmctools/timelapse-launcher/internal/logging"
	"github.com/mmctools/timelapse-launcher/internal/model"
)

// Status is a snapshot of the controller's progress, safe to hand to a
// presentation layer.
type Status struct {
	State       model.RunState
	FramesDone  int
	FramesTotal int
	Text        string
}

// Controller tracks one acquisition run at a time. It is bound to a single
// engine at construction and subscribes to its lifecycle notifications;
// Close deregisters every subscription so no callback can fire into a
// disposed presentation layer.
//
// Notification handlers are safe to invoke from the engine's delivery
// goroutine. Status callbacks are routed through the notifier injected with
// WithNotifier (fyne.Do in the UI, a direct call in tests).
type Controller struct {
	mu          sync.Mutex
	eng         engine.Engine
	seq         *model.Sequence
	sourceName  string
	output      string
	state       model.RunState
	framesDone  int
	framesTotal int
	submitting  bool
	closed      bool

	notify   func(func())
	onStatus func(Status)
	unsubs   []func()
	log      *logging.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the function used to marshal status callbacks onto the
// presentation layer's update context. Defaults to a direct call.
func WithNotifier(fn func(func())) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithStatusFunc sets the callback invoked (through the notifier) after
// every state or counter change.
func WithStatusFunc(fn func(Status)) Option {
	return func(c *Controller) { c.onStatus = fn }
}

// WithOutput sets the destination directory passed to the engine on Run.
func WithOutput(dir string) Option {
	return func(c *Controller) { c.output = dir }
}

// New creates a controller bound to the given engine and sequence and
// subscribes to the engine's lifecycle notifications.
func New(eng engine.Engine, seq *model.Sequence, opts ...Option) *Controller {
	c := &Controller{
		eng:    eng,
		seq:    seq,
		state:  model.RunStateIdle,
		notify: func(fn func()) { fn() },
		log:    logging.With("component", "acquire"),
	}
	if seq != nil {
		c.framesTotal = seq.ExpectedFrames()
	}
	for _, opt := range opts {
		opt(c)
	}

	events := eng.Events()
	c.unsubs = []func(){
		events.OnSequenceStarted(c.onSequenceStarted),
		events.OnFrameReady(c.onFrameReady),
		events.OnSequenceFinished(c.onSequenceFinished),
		events.OnSequenceCanceled(c.onSequenceCanceled),
	}
	return c
}

// Close deregisters all engine subscriptions. The controller cannot be
// reused afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Start submits the bound sequence to the engine. Preconditions are checked
// first: no acquisition may be running, a sequence must be present, a real
// device configuration must be loaded, and a focus drive must be selected.
// On any precondition failure a classified error is returned without
// contacting the engine and the state stays as it was. Running is entered
// only once the engine confirms via its started notification.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("controller is closed")
	}
	if c.submitting || !c.state.CanStart() {
		c.mu.Unlock()
		return engine.NewError(engine.KindAlreadyRunning, "a time-lapse is already running")
	}
	seq := c.seq
	output := c.output
	c.mu.Unlock()

	if c.eng.IsRunning() {
		return engine.NewError(engine.KindAlreadyRunning, "a time-lapse is already running")
	}
	if seq == nil {
		return engine.NewError(engine.KindConfigurationMissing, "no sequence loaded")
	}
	if err := c.checkReady(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.submitting || !c.state.CanStart() {
		c.mu.Unlock()
		return engine.NewError(engine.KindAlreadyRunning, "a time-lapse is already running")
	}
	c.submitting = true
	c.mu.Unlock()

	if err := c.eng.Run(seq, output); err != nil {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		classified := engine.Classify(err)
		c.log.Error("run submission failed", "kind", classified.Kind.String(), "err", err)
		return classified
	}
	return nil
}

// checkReady performs the advisory configuration checks. More devices than
// the bare core is used as a proxy for "a real configuration is loaded";
// the true precondition is not observable through the engine interface.
func (c *Controller) checkReady() error {
	var missing []string
	if len(c.eng.LoadedDevices()) <= 1 {
		missing = append(missing, "no device configuration is loaded (only the core device is available)")
	}
	if c.eng.FocusDevice() == "" {
		missing = append(missing, "no focus drive is selected")
	}
	if len(missing) > 0 {
		return engine.NewError(engine.KindConfigurationMissing, "%s", strings.Join(missing, "; "))
	}
	return nil
}

// Cancel requests cancellation of the running acquisition. It is a no-op
// unless the run is in progress; the state changes only when the engine
// delivers its canceled notification.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	running := c.state == model.RunStateRunning
	c.mu.Unlock()
	if !running {
		return nil
	}
	return c.eng.Cancel()
}

func (c *Controller) onSequenceStarted(seq *model.Sequence) {
	c.mu.Lock()
	c.state = model.RunStateRunning
	c.framesDone = 0
	c.submitting = false
	if seq != nil {
		c.framesTotal = seq.ExpectedFrames()
	}
	status := c.statusLocked()
	c.mu.Unlock()

	c.log.Info("time-lapse started", "expected_frames", status.FramesTotal)
	c.publish(status)
}

func (c *Controller) onFrameReady(frame engine.Frame) {
	c.mu.Lock()
	if c.state != model.RunStateRunning {
		state := c.state
		c.mu.Unlock()
		c.log.Warn("frame notification after terminal state, discarding",
			"state", state.String(), "frame_index", frame.Event.Index)
		return
	}
	if c.framesTotal > 0 && c.framesDone >= c.framesTotal {
		c.mu.Unlock()
		c.log.Warn("frame notification beyond expected total, discarding",
			"frame_index", frame.Event.Index)
		return
	}
	c.framesDone++
	status := c.statusLocked()
	c.mu.Unlock()

	c.publish(status)
}

func (c *Controller) onSequenceFinished(*model.Sequence) {
	c.terminal(model.RunStateCompleted)
}

func (c *Controller) onSequenceCanceled(*model.Sequence) {
	c.terminal(model.RunStateCanceled)
}

func (c *Controller) terminal(state model.RunState) {
	c.mu.Lock()
	if c.state != model.RunStateRunning {
		prev := c.state
		c.mu.Unlock()
		c.log.Warn("terminal notification while not running, ignoring",
			"state", prev.String(), "notification", state.String())
		return
	}
	c.state = state
	c.submitting = false
	status := c.statusLocked()
	c.mu.Unlock()

	c.log.Info("time-lapse ended", "state", state.String(), "frames", status.FramesDone)
	c.publish(status)
}

func (c *Controller) publish(status Status) {
	c.mu.Lock()
	onStatus := c.onStatus
	notify := c.notify
	closed := c.closed
	c.mu.Unlock()

	if closed || onStatus == nil {
		return
	}
	notify(func() { onStatus(status) })
}

// Status returns the current progress snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// State returns the current run state.
func (c *Controller) State() model.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FramesDone returns the number of frames acquired in the current run.
func (c *Controller) FramesDone() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.framesDone
}

// Sequence returns the bound sequence.
func (c *Controller) Sequence() *model.Sequence {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// SetSequence rebinds the controller to a new sequence and resets it to
// Idle. It fails while a run is in progress.
func (c *Controller) SetSequence(seq *model.Sequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == model.RunStateRunning || c.submitting {
		return engine.NewError(engine.KindAlreadyRunning, "cannot change the sequence while a time-lapse is running")
	}
	c.seq = seq
	c.sourceName = ""
	c.state = model.RunStateIdle
	c.framesDone = 0
	c.framesTotal = 0
	if seq != nil {
		c.framesTotal = seq.ExpectedFrames()
	}
	return nil
}

// SetSourceName records where the bound sequence came from, typically the
// file's base name. Status text prefers it over the embedded save name;
// SetSequence clears it.
func (c *Controller) SetSourceName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourceName = name
}

// StatusText returns the operator-facing status line. It is a pure function
// of the current state and counter and never blocks.
func (c *Controller) StatusText() string {
	return c.Status().Text
}

func (c *Controller) statusLocked() Status {
	return Status{
		State:       c.state,
		FramesDone:  c.framesDone,
		FramesTotal: c.framesTotal,
		Text:        statusText(c.state, c.framesDone, c.framesTotal, c.seq, c.sourceName),
	}
}

func statusText(state model.RunState, done, total int, seq *model.Sequence, source string) string {
	switch state {
	case model.RunStateRunning:
		if done == 0 {
			return "Time-lapse started."
		}
		totalText := "?"
		if total > 0 {
			totalText = fmt.Sprintf("%d", total)
		}
		return fmt.Sprintf("Frame %d/%s acquired.", done, totalText)
	case model.RunStateCompleted:
		return "Time-lapse completed."
	case model.RunStateCanceled:
		return "Time-lapse canceled."
	case model.RunStateFailed:
		return "Time-lapse failed."
	default:
		if seq == nil {
			return "Load a sequence to start."
		}
		if source != "" {
			return fmt.Sprintf("Ready to launch %q.", source)
		}
		return fmt.Sprintf("Ready to launch %q.", seq.Name())
	}
}
