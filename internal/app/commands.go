package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/pkg/log"
	"github.com/bft-labs/wow/pkg/state"
)

// LoadState loads the workspace state, resetting it to defaults when the file
// is missing or unreadable. The only error returned is a failed flush of the
// defaults.
func LoadState(ctx context.Context, repo state.Repository, logger log.Logger) (domain.State, error) {
	st, reset, err := state.LoadOrReset(ctx, repo)
	if reset {
		logger.Warn("state file unreadable, reset to defaults")
	}
	return st, err
}

// SetFrequency persists a new update interval given in hours. The argument
// is validated before the workspace is touched.
func SetFrequency(ctx context.Context, repo state.Repository, logger log.Logger, hours float64) (domain.State, error) {
	probe := domain.DefaultState()
	if err := probe.SetIntervalHours(hours); err != nil {
		return domain.State{}, err
	}

	st, err := LoadState(ctx, repo, logger)
	if err != nil {
		return st, err
	}
	st.Interval = probe.Interval
	if err := repo.Save(ctx, st); err != nil {
		return st, err
	}
	logger.Debug("interval updated", log.Duration("interval", st.Interval))
	return st, nil
}

// SetSource persists a new source selector.
func SetSource(ctx context.Context, repo state.Repository, logger log.Logger, v int) (domain.State, error) {
	src, ok := domain.ParseSource(v)
	if !ok {
		return domain.State{}, fmt.Errorf("%w: source must be 1 or 2, got %d", domain.ErrInvalidArgument, v)
	}

	st, err := LoadState(ctx, repo, logger)
	if err != nil {
		return st, err
	}
	st.Source = src
	if err := repo.Save(ctx, st); err != nil {
		return st, err
	}
	logger.Debug("source updated", log.String("source", src.Label()))
	return st, nil
}

// RequestStop asks a running daemon to exit by setting stopRequested and
// clearing running. It returns ErrNotRunning when no daemon holds the workspace.
func RequestStop(ctx context.Context, repo state.Repository, logger log.Logger) error {
	st, err := LoadState(ctx, repo, logger)
	if err != nil {
		return err
	}
	if !st.Running {
		return domain.ErrNotRunning
	}
	st.StopRequested = true
	st.Running = false
	return repo.Save(ctx, st)
}

// Uninstall removes wallpapers and wow data files from workspace. It refuses
// while a daemon is running. The executable and the apply-helper are kept.
func Uninstall(ctx context.Context, repo state.Repository, workspace string, logger log.Logger, dataFiles ...string) ([]string, error) {
	st, err := LoadState(ctx, repo, logger)
	if err != nil {
		return nil, err
	}
	if st.Running {
		return nil, domain.ErrAlreadyRunning
	}

	targets, err := imageFiles(workspace)
	if err != nil {
		return nil, errors.Join(domain.ErrFileIO, err)
	}
	if st.CurrentImagePath != "" {
		targets = appendUnique(targets, st.CurrentImagePath)
	}
	for _, name := range dataFiles {
		targets = appendUnique(targets, filepath.Join(workspace, name))
	}

	var removed []string
	var errs []error
	for _, p := range targets {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = append(removed, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return removed, errors.Join(append([]error{domain.ErrFileIO}, errs...)...)
	}
	return removed, nil
}

func appendUnique(list []string, p string) []string {
	for _, x := range list {
		if x == p {
			return list
		}
	}
	return append(list, p)
}
