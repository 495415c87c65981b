package lifecycle

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/wow/pkg/log"
)

type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewManager(t *testing.T) {
	m := NewManager(log.NewNoopLogger(), nil)
	if m.State() != StateStopped {
		t.Errorf("initial state = %v, want StateStopped", m.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestManager_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr bool
	}{
		{"stopped to starting", StateStopped, StateStarting, false},
		{"starting to running", StateStarting, StateRunning, false},
		{"starting to stopping", StateStarting, StateStopping, false},
		{"starting to crashed", StateStarting, StateCrashed, false},
		{"running to stopping", StateRunning, StateStopping, false},
		{"running to crashed", StateRunning, StateCrashed, false},
		{"stopping to stopped", StateStopping, StateStopped, false},
		{"crashed to starting", StateCrashed, StateStarting, false},
		{"stopped to running", StateStopped, StateRunning, true},
		{"running to starting", StateRunning, StateStarting, true},
		{"stopping to running", StateStopping, StateRunning, true},
		{"crashed to running", StateCrashed, StateRunning, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(log.NewNoopLogger(), nil)
			m.state = tt.from

			err := m.TransitionTo(tt.to, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("TransitionTo() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("err = %v, want ErrInvalidTransition", err)
				}
				if m.State() != tt.from {
					t.Errorf("state changed on invalid transition: %v", m.State())
				}
				return
			}
			if m.State() != tt.to {
				t.Errorf("state = %v, want %v", m.State(), tt.to)
			}
		})
	}
}

func TestManager_EmitsEvents(t *testing.T) {
	em := &mockEmitter{}
	m := NewManager(log.NewNoopLogger(), em)

	_ = m.TransitionTo(StateStarting, "start")
	_ = m.TransitionTo(StateRunning, "started")

	events := em.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].previous != StateStarting || events[1].current != StateRunning || events[1].reason != "started" {
		t.Errorf("unexpected event %+v", events[1])
	}
}

func TestManager_WaitWithTimeout(t *testing.T) {
	m := NewManager(log.NewNoopLogger(), nil)

	release := make(chan struct{})
	m.Go(func() { <-release })

	if err := m.WaitWithTimeout(10 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("err = %v, want ErrShutdownTimeout", err)
	}

	close(release)
	if err := m.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout after release: %v", err)
	}
}

func TestBackoff(t *testing.T) {
	b := NewBackoff(30*time.Second, 2*time.Minute)
	b.rand = func() float64 { return 0.5 } // zero jitter

	want := []time.Duration{30 * time.Second, time.Minute, 2 * time.Minute, 2 * time.Minute}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() #%d = %v, want %v", i, got, w)
		}
	}

	b.Reset()
	if b.Current() != 30*time.Second {
		t.Errorf("Current after Reset = %v", b.Current())
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	for _, r := range []float64{0, 0.999999} {
		b := NewBackoff(time.Minute, time.Hour)
		b.rand = func() float64 { return r }
		d := b.Next()
		if d < 48*time.Second || d > 72*time.Second {
			t.Errorf("jittered delay %v outside ±20%% of 1m", d)
		}
	}
}
