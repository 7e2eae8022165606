// Package resilience provides circuit breaker and backend failover
// primitives for the acoustic scoring path.
//
// The central type is [CircuitBreaker], a three-state breaker
// (closed → open → half-open) that keeps a failing acoustic backend from
// adding latency to every analysis. [RecognizerFallback] chains multiple
// recognizers with per-entry breakers so a tripped primary is bypassed in
// favour of healthy alternates.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned by [CircuitBreaker.Do] while the breaker is
// open and the cooldown has not elapsed.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the operating mode of a [CircuitBreaker].
type State int

const (
	// StateClosed forwards all calls.
	StateClosed State = iota

	// StateOpen rejects calls immediately with [ErrCircuitOpen] until the
	// cooldown elapses.
	StateOpen

	// StateHalfOpen lets a single probe call through; success closes the
	// breaker, failure re-opens it.
	StateHalfOpen
)

// String returns the human-readable state name.
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

// BreakerConfig holds tuning knobs for a [CircuitBreaker].
type BreakerConfig struct {
	// Name labels the breaker in log messages.
	Name string

	// FailureThreshold is the number of consecutive failures that trips the
	// breaker. Default: 3.
	FailureThreshold int

	// Cooldown is how long the breaker stays open before allowing a probe.
	// Default: 30s.
	Cooldown time.Duration
}

// CircuitBreaker implements the three-state circuit breaker pattern with a
// single-probe half-open mode.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker creates a breaker from cfg, substituting defaults for
// zero-value fields.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:      cfg.Name,
		threshold: cfg.FailureThreshold,
		cooldown:  cfg.Cooldown,
		state:     StateClosed,
	}
}

// Do runs fn if the breaker allows it. While open it returns
// [ErrCircuitOpen] without calling fn; after the cooldown a single probe is
// admitted and its outcome decides the next state.
func (cb *CircuitBreaker) Do(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.settle(err)
	return err
}

// admit decides whether a call may proceed and performs state transitions
// driven by elapsed time.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.cooldown {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probing = false
		slog.Info("circuit breaker entering half-open", "name", cb.name)
		fallthrough

	case StateHalfOpen:
		if cb.probing {
			// A probe is already in flight; reject concurrent callers.
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

// settle records the outcome of an admitted call.
func (cb *CircuitBreaker) settle(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.probing = false
		if err != nil {
			cb.state = StateOpen
			cb.openedAt = time.Now()
			slog.Warn("circuit breaker re-opened after failed probe", "name", cb.name)
			return
		}
		cb.state = StateClosed
		cb.failures = 0
		slog.Info("circuit breaker closed after successful probe", "name", cb.name)
		return
	}

	if err != nil {
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
			slog.Warn("circuit breaker opened",
				"name", cb.name,
				"consecutive_failures", cb.failures,
			)
		}
		return
	}
	cb.failures = 0
}

// State returns the breaker's current state. An open breaker whose cooldown
// has elapsed reports half-open; the actual transition happens on the next
// [CircuitBreaker.Do].
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.cooldown {
		return StateHalfOpen
	}
	return cb.state
}

// Reset forces the breaker back to closed, clearing failure counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
}
