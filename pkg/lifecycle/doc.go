// Package lifecycle tracks the in-process state of a long running wow daemon.
//
// The persisted running/stopRequested flags coordinate separate processes;
// this package only describes what the current process is doing, so the
// daemon can log transitions and wait for its helper goroutines on shutdown.
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Stopping, Crashed
//   - Running -> Stopping, Crashed
//   - Stopping -> Stopped, Crashed
//   - Crashed -> Starting
//
// Backoff spaces out automatic retries after a failed update.
package lifecycle
