package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/wow/pkg/log"
)

var (
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrShutdownTimeout   = errors.New("shutdown timeout")
)

// ShutdownTimeout is the default time the daemon waits for helper goroutines.
const ShutdownTimeout = 5 * time.Second

var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateCrashed},
	StateRunning:  {StateStopping, StateCrashed},
	StateStopping: {StateStopped, StateCrashed},
	StateCrashed:  {StateStarting},
}

// DefaultManager implements Manager.
type DefaultManager struct {
	mu      sync.RWMutex
	state   State
	wg      sync.WaitGroup
	logger  log.Logger
	emitter EventEmitter
}

// NewManager creates a manager in StateStopped. emitter may be nil.
func NewManager(logger log.Logger, emitter EventEmitter) *DefaultManager {
	return &DefaultManager{
		state:   StateStopped,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current lifecycle state.
func (m *DefaultManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to newState if the state machine allows it.
func (m *DefaultManager) TransitionTo(newState State, reason string) error {
	m.mu.Lock()
	oldState := m.state
	if !allowed(oldState, newState) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, oldState, newState)
	}
	m.state = newState
	m.mu.Unlock()

	// Emit outside of lock
	if m.emitter != nil {
		m.emitter.OnStateChange(oldState, newState, reason)
	}

	m.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Go runs fn in a tracked goroutine.
func (m *DefaultManager) Go(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all tracked goroutines with a timeout.
func (m *DefaultManager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, forcing exit",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
