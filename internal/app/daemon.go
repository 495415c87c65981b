package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/metrics"
	"github.com/bft-labs/wow/pkg/lifecycle"
	"github.com/bft-labs/wow/pkg/log"
	"github.com/bft-labs/wow/pkg/state"
)

// Default daemon timing values.
const (
	DefaultPollInterval   = 10 * time.Second
	DefaultBackoffInitial = 30 * time.Second
	DefaultBackoffMax     = 30 * time.Minute
	DefaultPruneInterval  = 6 * time.Hour
	DefaultPartialMinAge  = time.Minute
)

// DaemonConfig contains configuration for the daemon loop.
type DaemonConfig struct {
	Workspace      string
	StatePath      string // watched for external changes when WatchState is set
	PollInterval   time.Duration
	WatchState     bool
	HistoryKeep    int
	PruneInterval  time.Duration
	MetricsAddr    string
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	PartialMinAge  time.Duration // .part files younger than this survive the startup sweep
}

// Daemon runs the engine periodically until asked to stop.
type Daemon struct {
	config    DaemonConfig
	repo      state.Repository
	engine    *Engine
	pruner    Pruner
	handler   http.Handler
	metrics   metrics.Recorder
	lifecycle *lifecycle.DefaultManager
	logger    log.Logger
}

// NewDaemon creates a daemon. pruner, handler and rec may be nil.
func NewDaemon(
	config DaemonConfig,
	repo state.Repository,
	engine *Engine,
	pruner Pruner,
	handler http.Handler,
	rec metrics.Recorder,
	logger log.Logger,
) *Daemon {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.PruneInterval <= 0 {
		config.PruneInterval = DefaultPruneInterval
	}
	if config.BackoffInitial <= 0 {
		config.BackoffInitial = DefaultBackoffInitial
	}
	if config.BackoffMax < config.BackoffInitial {
		config.BackoffMax = DefaultBackoffMax
	}
	if config.PartialMinAge <= 0 {
		config.PartialMinAge = DefaultPartialMinAge
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Daemon{
		config:    config,
		repo:      repo,
		engine:    engine,
		pruner:    pruner,
		handler:   handler,
		metrics:   rec,
		lifecycle: lifecycle.NewManager(logger, nil),
		logger:    logger,
	}
}

// Lifecycle exposes the in-process state machine.
func (d *Daemon) Lifecycle() lifecycle.Manager {
	return d.lifecycle
}

// Run claims the workspace and loops until a stop request, a state reload
// failure or ctx cancellation. On cancellation the running flag is cleared
// before returning nil.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.lifecycle.TransitionTo(lifecycle.StateStarting, "run"); err != nil {
		return err
	}

	st, err := d.claim(ctx)
	if err != nil {
		_ = d.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
		return err
	}

	SweepPartials(d.config.Workspace, d.config.PartialMinAge, d.logger)

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := d.startWatcher(loopCtx)
	stopScheduler := d.startScheduler()
	stopServer := d.startMetricsServer()

	_ = d.lifecycle.TransitionTo(lifecycle.StateRunning, "workspace claimed")
	err = d.loop(loopCtx, st, changes)

	_ = d.lifecycle.TransitionTo(lifecycle.StateStopping, "loop exited")
	cancel()
	stopScheduler()
	stopServer()
	_ = d.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)

	if err != nil {
		_ = d.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
		return err
	}
	_ = d.lifecycle.TransitionTo(lifecycle.StateStopped, "stopped")
	return nil
}

// claim refuses to start when another daemon holds the workspace, then sets
// running and clears stopRequested.
func (d *Daemon) claim(ctx context.Context) (domain.State, error) {
	st, err := LoadState(ctx, d.repo, d.logger)
	if err != nil {
		return st, err
	}
	if st.Running {
		return st, domain.ErrAlreadyRunning
	}

	st.Running = true
	st.StopRequested = false
	if err := d.repo.Save(ctx, st); err != nil {
		if rerr := d.repo.Save(ctx, domain.DefaultState()); rerr != nil {
			d.logger.Error("failed to reset state", log.Err(rerr))
		}
		return st, err
	}

	d.logger.Info("daemon started",
		log.String("workspace", d.config.Workspace),
		log.String("source", st.Source.Label()),
		log.Float64("interval_hours", st.Interval.Hours()),
		log.Duration("poll", d.config.PollInterval),
		log.Bool("watch_state", d.config.WatchState),
	)
	return st, nil
}

func (d *Daemon) loop(ctx context.Context, st domain.State, changes <-chan struct{}) error {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	bo := lifecycle.NewBackoff(d.config.BackoffInitial, d.config.BackoffMax)
	var retryAt time.Time

	for {
		d.metrics.IncPoll()

		if now := d.engine.Now(); !retryAt.IsZero() && now.Before(retryAt) {
			d.logger.Debug("backing off", log.Time("retry_at", retryAt))
		} else {
			res, err := d.engine.Run(ctx, &st, false)
			switch {
			case err == nil:
				if res.Due {
					bo.Reset()
					retryAt = time.Time{}
				}
			case ctx.Err() != nil:
			case errors.Is(err, domain.ErrHelper):
				// The update itself was committed.
				bo.Reset()
				retryAt = time.Time{}
			case errors.Is(err, domain.ErrTimeReset):
			default:
				delay := bo.Next()
				retryAt = now.Add(delay)
				d.logger.Warn("update failed, backing off", log.Duration("retry_in", delay), log.Err(err))
			}
			// The commit merged whatever stop or ownership change landed on
			// disk during the update.
			if st.StopRequested || !st.Running {
				return d.stop(ctx, st)
			}
		}

		select {
		case <-ctx.Done():
			d.release()
			return nil
		case <-ticker.C:
		case <-changes:
			d.logger.Debug("state file changed")
		}

		next, err := d.repo.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.release()
				return nil
			}
			d.logger.Error("state reload failed, resetting to defaults", log.Err(err))
			if ferr := d.repo.Save(ctx, domain.DefaultState()); ferr != nil {
				return errors.Join(err, ferr)
			}
			return err
		}

		if next.StopRequested || !next.Running {
			return d.stop(ctx, next)
		}

		if next.Interval != st.Interval || next.Source != st.Source {
			d.logger.Info("settings changed",
				log.String("source", next.Source.Label()),
				log.Float64("interval_hours", next.Interval.Hours()),
			)
			bo.Reset()
			retryAt = time.Time{}
		}
		st = next
	}
}

// stop clears both daemon flags on st and flushes it.
func (d *Daemon) stop(ctx context.Context, st domain.State) error {
	d.logger.Info("stop requested")
	st.Running = false
	st.StopRequested = false
	return d.repo.Save(ctx, st)
}

// release clears the daemon flags after a signal. ctx is already cancelled,
// so the flush uses a fresh one.
func (d *Daemon) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := d.repo.Load(ctx)
	if err != nil {
		st = domain.DefaultState()
	}
	st.Running = false
	st.StopRequested = false
	if err := d.repo.Save(ctx, st); err != nil {
		d.logger.Error("failed to clear running flag", log.Err(err))
		return
	}
	d.logger.Info("daemon stopped by signal")
}

func (d *Daemon) startWatcher(ctx context.Context) <-chan struct{} {
	if !d.config.WatchState || d.config.StatePath == "" {
		return nil
	}
	w, err := NewStateWatcher(d.config.StatePath, DefaultWatchDebounce, d.logger)
	if err != nil {
		d.logger.Warn("state watcher unavailable, relying on polling", log.Err(err))
		return nil
	}
	d.lifecycle.Go(func() {
		defer w.Close()
		w.Run(ctx)
	})
	return w.Changes()
}

func (d *Daemon) startScheduler() func() {
	if d.pruner == nil || d.config.HistoryKeep <= 0 {
		return func() {}
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		d.logger.Warn("history pruning disabled", log.Err(err))
		return func() {}
	}
	_, err = s.NewJob(
		gocron.DurationJob(d.config.PruneInterval),
		gocron.NewTask(d.pruneHistory),
		gocron.WithName("history-prune"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		d.logger.Warn("history pruning disabled", log.Err(err))
		_ = s.Shutdown()
		return func() {}
	}
	s.Start()
	return func() {
		if err := s.Shutdown(); err != nil {
			d.logger.Warn("scheduler shutdown", log.Err(err))
		}
	}
}

func (d *Daemon) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := d.pruner.Prune(ctx, d.config.HistoryKeep)
	if err != nil {
		d.logger.Warn("history prune failed", log.Err(err))
		return
	}
	if n > 0 {
		d.logger.Info("history pruned", log.Int64("removed", n))
	}
}

func (d *Daemon) startMetricsServer() func() {
	if d.handler == nil || d.config.MetricsAddr == "" {
		return func() {}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", d.handler)
	srv := &http.Server{
		Addr:              d.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	d.lifecycle.Go(func() {
		d.logger.Info("metrics listening", log.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("metrics server", log.Err(err))
		}
	})
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
