package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/kbukum/userservice/clock"
)

// State is a circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned instead of calling through an open breaker.
var ErrOpen = errors.New("resilience: circuit breaker is open")

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	// Name labels state change callbacks.
	Name string
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker (default: 5).
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before letting a
	// probe through (default: 30s).
	OpenTimeout time.Duration
	// HalfOpenProbes is the number of successful probes that close the
	// breaker again (default: 1).
	HalfOpenProbes int
	// OnStateChange is called after each transition, outside the lock.
	OnStateChange func(name string, from, to State)
	// Clock drives OpenTimeout (default: clock.System()).
	Clock clock.Clock
}

// DefaultBreakerConfig returns the defaults used for the service's stores.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenProbes:   1,
	}
}

// CircuitBreaker fails fast after repeated failures. Context cancellation
// is not counted as a failure. Safe for concurrent use.
type CircuitBreaker struct {
	cfg BreakerConfig

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenProbes <= 0 {
		cfg.HalfOpenProbes = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &CircuitBreaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open, and records its result.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.Allow(); err != nil {
		return err
	}
	err := fn()
	cb.Record(err)
	return err
}

// Allow reserves a call. Every nil return must be paired with Record.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	var change func()
	defer func() {
		cb.mu.Unlock()
		if change != nil {
			change()
		}
	}()

	if cb.state == StateOpen && cb.cfg.Clock.Now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		change = cb.transition(StateHalfOpen)
	}
	switch cb.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.HalfOpenProbes {
			return ErrOpen
		}
		cb.inFlight++
	}
	return nil
}

// Record reports the result of a call reserved with Allow.
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	var change func()
	defer func() {
		cb.mu.Unlock()
		if change != nil {
			change()
		}
	}()

	if cb.state == StateHalfOpen && cb.inFlight > 0 {
		cb.inFlight--
	}

	switch {
	case err != nil && !notCanceled(err):
		return
	case err != nil:
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			change = cb.transition(StateOpen)
		}
	default:
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.cfg.HalfOpenProbes {
				change = cb.transition(StateClosed)
			}
		}
	}
}

// State returns the current state. An open breaker whose timeout elapsed
// reports half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen && cb.cfg.Clock.Now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// transition must be called with mu held. It returns the state change
// callback to run after unlocking, or nil.
func (cb *CircuitBreaker) transition(to State) func() {
	from := cb.state
	if from == to {
		return nil
	}
	cb.state = to
	cb.successes = 0
	cb.inFlight = 0
	switch to {
	case StateOpen:
		cb.openedAt = cb.cfg.Clock.Now()
	case StateClosed:
		cb.failures = 0
	}

	if cb.cfg.OnStateChange == nil {
		return nil
	}
	name, fn := cb.cfg.Name, cb.cfg.OnStateChange
	return func() { fn(name, from, to) }
}
