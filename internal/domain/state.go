package domain

import (
	"fmt"
	"time"
)

// Source selects the remote wallpaper endpoint. The raw value is stored as-is;
// unknown values resolve to the default endpoint.
type Source int32

const (
	SourceRandom Source = 1
	SourceDaily  Source = 2
)

const (
	BingRandomURL = "https://bing.img.run/rand_uhd.php"
	BingDailyURL  = "https://bing.img.run/uhd.php"
)

// DefaultSource is used for fresh workspaces and for unknown raw values.
const DefaultSource = SourceRandom

// DefaultInterval is the update cadence of a fresh workspace.
const DefaultInterval = 12 * time.Hour

// maxIntervalHours keeps the interval representable as a time.Duration.
const maxIntervalHours = 24 * 365 * 100

// Known reports whether s maps to a catalogued endpoint.
func (s Source) Known() bool {
	return s == SourceRandom || s == SourceDaily
}

// URL returns the redirect endpoint for s.
func (s Source) URL() string {
	switch s {
	case SourceDaily:
		return BingDailyURL
	default:
		return BingRandomURL
	}
}

// Label returns a human-readable name.
func (s Source) Label() string {
	switch s {
	case SourceRandom:
		return "bing random image"
	case SourceDaily:
		return "bing every-day image"
	default:
		return "unknown (using bing random image)"
	}
}

// ParseSource validates a user supplied selector.
func ParseSource(v int) (Source, bool) {
	s := Source(v)
	return s, s.Known()
}

// State is the single persisted record shared by every wow invocation in a
// workspace. It is the only coordination channel between the daemon and
// short-lived commands.
type State struct {
	Source           Source
	Interval         time.Duration
	LastUpdateAt     time.Time
	Running          bool
	StopRequested    bool
	CurrentImagePath string
}

// DefaultState returns the state of a fresh workspace. LastUpdateAt is the
// UNIX epoch so the first due-check always fires.
func DefaultState() State {
	return State{
		Source:       DefaultSource,
		Interval:     DefaultInterval,
		LastUpdateAt: time.Unix(0, 0).UTC(),
	}
}

// Equal compares every field; timestamps are compared as instants.
func (s State) Equal(o State) bool {
	return s.Source == o.Source &&
		s.Interval == o.Interval &&
		s.LastUpdateAt.Equal(o.LastUpdateAt) &&
		s.Running == o.Running &&
		s.StopRequested == o.StopRequested &&
		s.CurrentImagePath == o.CurrentImagePath
}

// SetIntervalHours validates and applies a `freq` argument. Values that are
// not positive, or that round to less than one second, are rejected.
func (s *State) SetIntervalHours(hours float64) error {
	if !(hours > 0) || hours > maxIntervalHours {
		return fmt.Errorf("%w: frequency must be a positive number of hours, got %v", ErrInvalidArgument, hours)
	}
	d := time.Duration(hours * float64(time.Hour)).Round(time.Second)
	if d < time.Second {
		return fmt.Errorf("%w: frequency of %v hours is below one second", ErrInvalidArgument, hours)
	}
	s.Interval = d
	return nil
}

// IntervalHours returns the interval in fractional hours.
func (s State) IntervalHours() float64 {
	return s.Interval.Hours()
}
