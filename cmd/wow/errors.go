package main

import (
	"errors"

	"github.com/bft-labs/wow/internal/domain"
)

// errConfig marks invalid settings from flags, env, .env or wow.toml.
var errConfig = errors.New("wow: invalid settings")

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitNoWorkspace = 3
)

// describe turns an error into the single line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyRunning):
		return "wow is already running (run \"wow stop\" first)"
	case errors.Is(err, domain.ErrNotRunning):
		return "wow is not running"
	case errors.Is(err, domain.ErrWorkspace):
		return "can't access current working space: " + err.Error()
	case errors.Is(err, domain.ErrHelper):
		return "wallpaper saved, but the apply helper failed: " + err.Error()
	default:
		return err.Error()
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, errConfig):
		return exitUsage
	case errors.Is(err, domain.ErrWorkspace):
		return exitNoWorkspace
	default:
		return exitFailure
	}
}
