package domain

import "errors"

// Domain errors represent error conditions in the wow domain.
// They are returned wrapped and can be checked with errors.Is.
var (
	// ErrConfigIO is returned when the state file cannot be read or decoded.
	ErrConfigIO = errors.New("wow: state file unreadable")

	// ErrConfigFlush is returned when the state file cannot be written.
	ErrConfigFlush = errors.New("wow: state file flush failed")

	// ErrWorkspace is returned when the install directory cannot be determined.
	ErrWorkspace = errors.New("wow: can't access current working space")

	// ErrFetch is returned for network, timeout or HTTP status failures.
	ErrFetch = errors.New("wow: fetch image error")

	// ErrFileIO is returned when an image file cannot be written.
	ErrFileIO = errors.New("wow: image file error")

	// ErrHelper is returned when the apply-helper is missing or exits non-zero.
	ErrHelper = errors.New("wow: apply helper failed")

	// ErrInvalidArgument is returned for bad freq/from input.
	ErrInvalidArgument = errors.New("wow: invalid argument")

	// ErrAlreadyRunning is returned when a daemon already holds the workspace.
	ErrAlreadyRunning = errors.New("wow: already running")

	// ErrNotRunning is returned by stop when no daemon holds the workspace.
	ErrNotRunning = errors.New("wow: not running")

	// ErrTimeReset is returned when the clock went backwards past the last
	// update; the last update time has been reset to now.
	ErrTimeReset = errors.New("wow: time reset")
)
