package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindConfigurationMissing means no real device configuration is loaded
	// or no focus drive is selected. Never retried; the operator must fix
	// the configuration first.
	KindConfigurationMissing Kind = iota

	// KindRunRequestFailed means the engine rejected or failed the run
	// submission for any other reason.
	KindRunRequestFailed

	// KindAlreadyRunning means a start was requested while an acquisition
	// is still executing.
	KindAlreadyRunning
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "ConfigurationMissing"
	case KindRunRequestFailed:
		return "RunRequestFailed"
	case KindAlreadyRunning:
		return "AlreadyRunning"
	default:
		return "Unknown"
	}
}

// Error is a classified engine failure carrying an operator-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped engine error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a classified error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a classified engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Classify translates an error returned by an engine submission into a
// classified error. Already-classified errors pass through unchanged. The
// empty-device-label text is how Micro-Manager reports a run attempted with
// no focus drive selected.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if strings.Contains(err.Error(), `No device with label ""`) {
		return &Error{
			Kind:    KindConfigurationMissing,
			Message: "no focus drive is selected",
			Err:     err,
		}
	}

	return &Error{
		Kind:    KindRunRequestFailed,
		Message: "engine rejected the run request",
		Err:     err,
	}
}
