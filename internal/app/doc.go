// Package app holds the wow use cases: the update engine, the daemon loop and
// the short-lived commands that edit the shared workspace state.
package app
