package model

// RunState represents the lifecycle state of an acquisition run
type RunState string

const (
	// RunStateIdle means no run has been started yet (or the controller was reset)
	RunStateIdle RunState = "Idle"

	// RunStateRunning means the engine confirmed the sequence started
	RunStateRunning RunState = "Running"

	// RunStateCompleted means the engine reported the sequence finished
	RunStateCompleted RunState = "Completed"

	// RunStateCanceled means the engine reported the sequence was canceled
	RunStateCanceled RunState = "Canceled"

	// RunStateFailed means the engine reported the run failed after starting
	RunStateFailed RunState = "Failed"
)

// String returns the string representation of RunState
func (rs RunState) String() string {
	return string(rs)
}

// IsTerminal returns true if the run reached a terminal state
func (rs RunState) IsTerminal() bool {
	return rs == RunStateCompleted || rs == RunStateCanceled || rs == RunStateFailed
}

// CanStart returns true if a new run may be requested from this state.
// Only a running acquisition blocks a new start.
func (rs RunState) CanStart() bool {
	return rs != RunStateRunning
}
