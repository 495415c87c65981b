package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/pkg/log"
)

// maxHelperOutput bounds the helper output kept on a HelperError.
const maxHelperOutput = 4 << 10

// HelperError reports a missing apply-helper or a non-zero exit.
type HelperError struct {
	Path     string
	ExitCode int // -1 when the helper could not be started
	Output   string
	Err      error
}

func (e *HelperError) Error() string {
	msg := fmt.Sprintf("apply helper %s", e.Path)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" exited with code %d", e.ExitCode)
	} else {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *HelperError) Unwrap() error { return e.Err }

// Is lets callers match any helper failure with errors.Is(err, domain.ErrHelper).
func (e *HelperError) Is(target error) bool { return target == domain.ErrHelper }

// ExecApplier runs an external executable with the image path as its only argument.
type ExecApplier struct {
	path   string
	logger log.Logger
}

// NewExecApplier creates an applier for the helper at path.
func NewExecApplier(path string, logger log.Logger) *ExecApplier {
	return &ExecApplier{path: path, logger: logger}
}

// Apply runs the helper and waits for it.
func (a *ExecApplier) Apply(ctx context.Context, imagePath string) error {
	cmd := exec.CommandContext(ctx, a.path, imagePath)
	out, err := cmd.CombinedOutput()
	if err == nil {
		a.logger.Debug("apply helper finished", log.String("helper", a.path), log.String("image", imagePath))
		return nil
	}

	he := &HelperError{
		Path:     a.path,
		ExitCode: -1,
		Output:   truncate(strings.TrimSpace(string(out)), maxHelperOutput),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		he.ExitCode = exitErr.ExitCode()
	}
	return he
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
