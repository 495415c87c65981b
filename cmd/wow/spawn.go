package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// startDaemon re-executes wow with args as a detached child whose output goes
// to the workspace log file. It returns the child's pid.
func startDaemon(workspace string, args []string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	logF, err := os.OpenFile(filepath.Join(workspace, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()

	cmd := exec.Command(exe, args...)
	cmd.Dir = workspace
	cmd.Stdout = logF
	cmd.Stderr = logF
	cmd.Stdin = nil
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon process: %w", err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("failed to release process: %w", err)
	}
	return pid, nil
}
