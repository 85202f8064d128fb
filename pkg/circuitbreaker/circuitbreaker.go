package circuitbreaker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrOpen is returned by Execute while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

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
	}
	return "unknown"
}

// CircuitBreaker opens after more than maxFailures failures inside window and
// lets a single trial call through once timeout has passed. Other calls are
// rejected while the trial is in flight.
type CircuitBreaker struct {
	maxFailures     int
	window          time.Duration
	failures        []time.Time
	timeout         time.Duration
	lastFailureTime time.Time
	state           State
	trialInFlight   bool
	now             func() time.Time
	mu              sync.Mutex
}

func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreakerWithWindow(maxFailures, timeout, 60*time.Second)
}

func NewCircuitBreakerWithWindow(maxFailures int, timeout time.Duration, window time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		window:      window,
		timeout:     timeout,
		state:       StateClosed,
		failures:    make([]time.Time, 0),
		now:         time.Now,
	}
}

// Execute runs fn unless the breaker is open. Only errors for which
// countsAsFailure returns true trip the breaker; a nil countsAsFailure counts
// every error.
func (cb *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	allowed, trial := cb.allow()
	if !allowed {
		return ErrOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.trialInFlight = false
	}
	now := cb.now()
	if err != nil && (countsAsFailure == nil || countsAsFailure(err)) {
		cb.lastFailureTime = now
		cb.failures = append(cb.failures, now)
		cb.cleanOldFailures(now)

		if len(cb.failures) > cb.maxFailures || cb.state == StateHalfOpen {
			cb.state = StateOpen
		}
		return err
	}

	cb.cleanOldFailures(now)
	if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = cb.failures[:0]
	}
	return err
}

// allow reports whether a call may run and whether it is the half-open trial.
func (cb *CircuitBreaker) allow() (allowed bool, trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true, false
	case StateHalfOpen:
		if cb.trialInFlight {
			return false, false
		}
	default:
		if cb.now().Sub(cb.lastFailureTime) < cb.timeout {
			return false, false
		}
		cb.state = StateHalfOpen
		cb.failures = cb.failures[:0]
	}
	cb.trialInFlight = true
	return true, true
}

func (cb *CircuitBreaker) cleanOldFailures(now time.Time) {
	cutoff := now.Add(-cb.window)
	i := 0
	for i < len(cb.failures) && !cb.failures[i].After(cutoff) {
		i++
	}
	cb.failures = cb.failures[i:]
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
