package state

import (
	"context"
	"fmt"

	"github.com/bft-labs/wow/internal/domain"
)

// Repository loads and flushes the workspace state.
type Repository interface {
	// Load returns the persisted state. Any read or decode failure, including
	// a missing file, is reported as an error wrapping domain.ErrConfigIO.
	Load(ctx context.Context) (domain.State, error)

	// Save overwrites the persisted state. Failures wrap domain.ErrConfigFlush.
	Save(ctx context.Context, st domain.State) error
}

// LoadOrReset applies the workspace recovery policy: when the state cannot be
// loaded it is replaced by defaults, which are flushed immediately. reset
// reports whether that happened. The returned error is only ever the flush
// error of the defaults.
func LoadOrReset(ctx context.Context, repo Repository) (st domain.State, reset bool, err error) {
	st, loadErr := repo.Load(ctx)
	if loadErr == nil {
		return st, false, nil
	}

	st = domain.DefaultState()
	if err := repo.Save(ctx, st); err != nil {
		return st, true, fmt.Errorf("reset state after %v: %w", loadErr, err)
	}
	return st, true, nil
}
