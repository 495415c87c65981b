package lifecycle

import "time"

// State represents the lifecycle state of the daemon.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Manager manages the lifecycle state machine.
type Manager interface {
	// State returns the current lifecycle state.
	State() State

	// TransitionTo attempts to transition to a new state.
	// Returns ErrInvalidTransition if the move is not allowed.
	TransitionTo(newState State, reason string) error

	// Go runs fn in a goroutine tracked by WaitWithTimeout.
	Go(fn func())

	// WaitWithTimeout waits for all tracked goroutines to finish.
	// Returns ErrShutdownTimeout if the timeout expires.
	WaitWithTimeout(timeout time.Duration) error
}
