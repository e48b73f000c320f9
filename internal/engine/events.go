package engine

import (
	"sync"

	"github.com/mmctools/timelapse-launcher/internal/model"
)

// Frame is the payload of a frame-ready notification: the image data, the
// sequence event it belongs to, and engine-supplied metadata.
type Frame struct {
	Pixels   []uint16
	Event    model.FrameEvent
	Metadata map[string]string
}

// signal is a typed callback list. Connect registers a handler and returns a
// disconnect func; Emit calls handlers in registration order outside the lock.
type signal[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers []handlerEntry[T]
}

type handlerEntry[T any] struct {
	id int
	fn func(T)
}

func (s *signal[T]) connect(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.handlers = append(s.handlers, handlerEntry[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, h := range s.handlers {
			if h.id == id {
				s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

func (s *signal[T]) emit(value T) {
	s.mu.Lock()
	snapshot := make([]handlerEntry[T], len(s.handlers))
	copy(snapshot, s.handlers)
	s.mu.Unlock()

	for _, h := range snapshot {
		h.fn(value)
	}
}

// Events is the engine's lifecycle notification hub. For a single run the
// delivery order is: one started, zero or more frame-ready, then exactly one
// of finished or canceled. Handlers run on the engine's delivery goroutine;
// subscribers that touch UI state must marshal updates themselves.
//
// Every subscription returns an unsubscribe func. Subscribers must call it
// before being destroyed so no callback fires into a disposed receiver.
type Events struct {
	started  signal[*model.Sequence]
	frame    signal[Frame]
	finished signal[*model.Sequence]
	canceled signal[*model.Sequence]
}

// NewEvents creates an empty notification hub.
func NewEvents() *Events {
	return &Events{}
}

// OnSequenceStarted registers a handler for the started notification.
func (e *Events) OnSequenceStarted(fn func(*model.Sequence)) func() {
	return e.started.connect(fn)
}

// OnFrameReady registers a handler for frame-ready notifications.
func (e *Events) OnFrameReady(fn func(Frame)) func() {
	return e.frame.connect(fn)
}

// OnSequenceFinished registers a handler for the finished notification.
func (e *Events) OnSequenceFinished(fn func(*model.Sequence)) func() {
	return e.finished.connect(fn)
}

// OnSequenceCanceled registers a handler for the canceled notification.
func (e *Events) OnSequenceCanceled(fn func(*model.Sequence)) func() {
	return e.canceled.connect(fn)
}

// EmitSequenceStarted delivers a started notification to all subscribers.
func (e *Events) EmitSequenceStarted(seq *model.Sequence) {
	e.started.emit(seq)
}

// EmitFrameReady delivers a frame-ready notification to all subscribers.
func (e *Events) EmitFrameReady(frame Frame) {
	e.frame.emit(frame)
}

// EmitSequenceFinished delivers a finished notification to all subscribers.
func (e *Events) EmitSequenceFinished(seq *model.Sequence) {
	e.finished.emit(seq)
}

// EmitSequenceCanceled delivers a canceled notification to all subscribers.
func (e *Events) EmitSequenceCanceled(seq *model.Sequence) {
	e.canceled.emit(seq)
}
