package app

import (
	"context"
	"errors"
	"time"

	"github.com/bft-labs/wow/internal/domain"
	"github.com/bft-labs/wow/internal/history"
	"github.com/bft-labs/wow/internal/metrics"
	"github.com/bft-labs/wow/pkg/log"
	"github.com/bft-labs/wow/pkg/state"
)

// IsDue reports whether an update should run. force always wins. A clock that
// went backwards past last returns ErrTimeReset.
func IsDue(now, last time.Time, interval time.Duration, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if now.Before(last) {
		return false, domain.ErrTimeReset
	}
	return now.Sub(last) >= interval, nil
}

// EngineConfig contains configuration for the update engine.
type EngineConfig struct {
	Workspace string
	Session   string
}

// Result describes one engine run.
type Result struct {
	Due       bool
	ImageURL  string
	ImagePath string
	Bytes     int
}

// Engine performs due-checks and wallpaper updates against a workspace.
type Engine struct {
	config  EngineConfig
	repo    state.Repository
	fetcher Fetcher
	applier Applier
	history HistoryRecorder
	metrics metrics.Recorder
	logger  log.Logger
	now     func() time.Time
}

// NewEngine creates an engine. hist and rec may be nil.
func NewEngine(
	config EngineConfig,
	repo state.Repository,
	fetcher Fetcher,
	applier Applier,
	hist HistoryRecorder,
	rec metrics.Recorder,
	logger log.Logger,
) *Engine {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Engine{
		config:  config,
		repo:    repo,
		fetcher: fetcher,
		applier: applier,
		history: hist,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock replaces the engine clock.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Run checks whether st is due and updates it if so. st is modified in place
// and flushed whenever it changes.
//
// When the clock went backwards the last update time is reset to now, the
// state is flushed and ErrTimeReset is returned.
func (e *Engine) Run(ctx context.Context, st *domain.State, force bool) (Result, error) {
	now := e.now()

	due, err := IsDue(now, st.LastUpdateAt, st.Interval, force)
	if errors.Is(err, domain.ErrTimeReset) {
		e.logger.Warn("clock went backwards, resetting last update time",
			log.Time("last_update", st.LastUpdateAt),
			log.Time("now", now),
		)
		e.metrics.ObserveUpdate(metrics.OutcomeClockReset, 0)
		st.LastUpdateAt = now
		if ferr := e.commit(ctx, st); ferr != nil {
			return Result{}, ferr
		}
		return Result{}, err
	}
	if !due {
		e.metrics.ObserveUpdate(metrics.OutcomeNotDue, 0)
		return Result{}, nil
	}

	res, err := e.Update(ctx, st, now)
	res.Due = true
	return res, err
}

// Update fetches a new image, stores it, applies it and commits st.
//
// Fetch and write failures leave st untouched. Once the image is on disk the
// previous image is deleted, and st is committed even if the apply-helper
// fails; the helper error is then returned after a successful flush. The
// commit keeps the running, stopRequested, interval and source values found
// on disk, and st reflects them afterwards.
func (e *Engine) Update(ctx context.Context, st *domain.State, now time.Time) (Result, error) {
	start := time.Now()
	entry := history.Entry{
		StartedAt: now,
		Session:   e.config.Session,
		Source:    int(st.Source),
		SourceURL: st.Source.URL(),
	}
	var res Result

	imageURL, err := e.fetcher.Resolve(ctx, entry.SourceURL)
	if err != nil {
		return res, e.fail(ctx, &entry, start, metrics.OutcomeFetchFailed, err)
	}
	entry.ImageURL = imageURL
	res.ImageURL = imageURL

	data, err := e.fetcher.Download(ctx, imageURL)
	if err != nil {
		return res, e.fail(ctx, &entry, start, metrics.OutcomeFetchFailed, err)
	}
	entry.Bytes = len(data)
	res.Bytes = len(data)
	e.metrics.ObserveDownloadBytes(len(data))

	path, err := writeImage(e.config.Workspace, now, data)
	if err != nil {
		return res, e.fail(ctx, &entry, start, metrics.OutcomeWriteFailed, err)
	}
	entry.ImagePath = path
	res.ImagePath = path

	if prev := st.CurrentImagePath; prev != path {
		removeImage(prev, e.logger)
	}
	st.CurrentImagePath = path

	applyErr := e.applier.Apply(ctx, path)

	st.LastUpdateAt = now
	if err := e.commit(ctx, st); err != nil {
		if applyErr != nil {
			e.logger.Warn("apply helper failed", log.Err(applyErr))
		}
		return res, e.fail(ctx, &entry, start, metrics.OutcomeFlushFailed, err)
	}
	e.metrics.SetLastSuccess(now)

	if applyErr != nil {
		return res, e.fail(ctx, &entry, start, metrics.OutcomeHelperFailed, applyErr)
	}

	entry.Outcome = string(metrics.OutcomeSuccess)
	entry.Duration = time.Since(start)
	e.metrics.ObserveUpdate(metrics.OutcomeSuccess, entry.Duration)
	e.record(ctx, entry)

	e.logger.Info("wallpaper updated",
		log.String("source", st.Source.Label()),
		log.String("url", imageURL),
		log.String("path", path),
		log.Int("bytes", len(data)),
		log.Duration("duration", entry.Duration),
	)
	return res, nil
}

// commit writes the fields the engine owns (lastUpdateAt and
// currentImagePath) onto the record currently on disk, keeping flags and
// settings other invocations wrote during the update. On success st is
// replaced by the flushed record. An unreadable file is overwritten with st.
func (e *Engine) commit(ctx context.Context, st *domain.State) error {
	next := *st
	if disk, err := e.repo.Load(ctx); err == nil {
		disk.LastUpdateAt = st.LastUpdateAt
		disk.CurrentImagePath = st.CurrentImagePath
		next = disk
	}
	if err := e.repo.Save(ctx, next); err != nil {
		return err
	}
	*st = next
	return nil
}

func (e *Engine) fail(ctx context.Context, entry *history.Entry, start time.Time, outcome metrics.Outcome, err error) error {
	entry.Outcome = string(outcome)
	entry.Error = err.Error()
	entry.Duration = time.Since(start)
	e.metrics.ObserveUpdate(outcome, entry.Duration)
	e.record(ctx, *entry)

	e.logger.Error("update failed",
		log.String("outcome", string(outcome)),
		log.String("source_url", entry.SourceURL),
		log.Err(err),
	)
	return err
}

// record writes to the history store. A cancelled ctx must not lose the row,
// so the write runs detached from cancellation.
func (e *Engine) record(ctx context.Context, entry history.Entry) {
	if e.history == nil {
		return
	}
	if err := e.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		e.logger.Warn("failed to record update history", log.Err(err))
	}
}
