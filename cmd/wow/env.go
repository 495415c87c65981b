package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/wow/internal/app"
	"github.com/bft-labs/wow/internal/cliconfig"
	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/history"
	"github.com/bft-labs/wow/internal/metrics"
	"github.com/bft-labs/wow/internal/output"
	"github.com/bft-labs/wow/pkg/fetch"
	"github.com/bft-labs/wow/pkg/log"
	"github.com/bft-labs/wow/pkg/state"
)

// logFileName receives the daemon's output.
const logFileName = "wow.log"

// env carries what every command needs once flags are parsed.
type env struct {
	workspace string
	cfg       cliconfig.Config
	changed   map[string]bool

	logger  *log.ZerologAdapter
	repo    *state.FileRepository
	printer *output.Printer
	history *history.Store
}

// setup resolves the workspace and settings. A workspace failure aborts the
// invocation before any state is touched.
func (e *env) setup(cmd *cobra.Command, args []string) error {
	ws, err := cliconfig.ResolveWorkspace(e.workspace)
	if err != nil {
		return err
	}

	e.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { e.changed[f.Name] = true })

	if err := cliconfig.Load(&e.cfg, ws, e.changed); err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	e.logger = log.NewConsoleLogger(os.Stderr, e.cfg.LogLevel)
	e.repo = state.NewFileRepository(ws)
	e.printer = output.NewPrinter(cmd.OutOrStdout())
	return nil
}

func (e *env) close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			e.logger.Warn("close history", log.Err(err))
		}
		e.history = nil
	}
}

// openHistory opens wow.db. Failures disable history rather than the command.
func (e *env) openHistory() *history.Store {
	if e.history != nil {
		return e.history
	}
	store, err := history.Open(filepath.Join(e.cfg.Workspace, history.FileName))
	if err != nil {
		e.logger.Warn("history unavailable", log.Err(err))
		return nil
	}
	e.history = store
	return store
}

// newEngine wires the update engine for this workspace.
func (e *env) newEngine(session string, rec metrics.Recorder) *app.Engine {
	client := fetch.NewClient(&http.Client{Timeout: e.cfg.HTTPTimeout}, e.logger, int64(e.cfg.MaxImageBytes))
	applier := app.NewExecApplier(e.cfg.UpdaterPath, e.logger)

	var hist app.HistoryRecorder
	if store := e.openHistory(); store != nil {
		hist = store
	}
	return app.NewEngine(
		app.EngineConfig{Workspace: e.cfg.Workspace, Session: session},
		e.repo, client, applier, hist, rec, e.logger,
	)
}

// newSession returns an id tying history rows to one process.
func newSession() string {
	return uuid.NewString()
}

// update runs one due-check, or a forced update.
func (e *env) update(ctx context.Context, force bool) error {
	st, err := app.LoadState(ctx, e.repo, e.logger)
	if err != nil {
		return err
	}

	engine := e.newEngine(newSession(), nil)
	res, err := engine.Run(ctx, &st, force)
	if errors.Is(err, domain.ErrTimeReset) {
		e.printer.Warn("system clock went backwards, last update time reset to now")
		return nil
	}
	if err != nil {
		return err
	}
	if !res.Due {
		next := st.LastUpdateAt.Add(st.Interval).Local()
		e.printer.Success("wallpaper is fresh, next update after %s", next.Format("2006-01-02 15:04"))
		return nil
	}
	e.printer.Success("wallpaper updated: %s", res.ImagePath)
	return nil
}
