package metrics

import "time"

// Outcome labels the result of one update attempt.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeHelperFailed Outcome = "helper_failed"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeWriteFailed  Outcome = "write_failed"
	OutcomeFlushFailed  Outcome = "flush_failed"
	OutcomeClockReset   Outcome = "clock_reset"
	OutcomeNotDue       Outcome = "not_due"
)

// Recorder receives engine and daemon events.
type Recorder interface {
	ObserveUpdate(outcome Outcome, d time.Duration)
	ObserveDownloadBytes(n int)
	IncPoll()
	SetLastSuccess(t time.Time)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveUpdate(Outcome, time.Duration) {}
func (NoopRecorder) ObserveDownloadBytes(int)             {}
func (NoopRecorder) IncPoll()                             {}
func (NoopRecorder) SetLastSuccess(time.Time)             {}
