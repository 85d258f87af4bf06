// Package circuitbreaker stops calling a failing dependency for a cool-down period.
package circuitbreaker

import (
	"fmt"
	"sync"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

type Config struct {
	// FailureThreshold consecutive failures open the circuit
	FailureThreshold int
	// SuccessThreshold successes in HalfOpen close it again
	SuccessThreshold int
	// Timeout is how long the circuit stays Open before probing
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

type CircuitBreaker struct {
	name   string
	config Config
	now    func() time.Time

	mu              sync.Mutex
	state           State
	failureCount    int
	successCount    int
	lastStateChange time.Time
}

func New(name string) *CircuitBreaker {
	return NewWithConfig(name, DefaultConfig())
}

func NewWithConfig(name string, config Config) *CircuitBreaker {
	defaults := DefaultConfig()
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = defaults.FailureThreshold
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = defaults.SuccessThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &CircuitBreaker{
		name:            name,
		config:          config,
		now:             time.Now,
		lastStateChange: time.Now(),
	}
}

// CanExecute reports whether a call may go through, moving Open to HalfOpen once the timeout elapsed
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed, HalfOpen:
		return true
	case Open:
		if cb.now().Sub(cb.lastStateChange) >= cb.config.Timeout {
			cb.transition(HalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state != HalfOpen {
		return
	}

	cb.successCount++
	if cb.successCount >= cb.config.SuccessThreshold {
		cb.transition(Closed)
		fiberlog.Infof("CircuitBreaker: %s transitioned to Closed state after success", cb.name)
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.state == HalfOpen || (cb.state == Closed && cb.failureCount >= cb.config.FailureThreshold) {
		cb.transition(Open)
		fiberlog.Warnf("CircuitBreaker: %s transitioned to Open state after %d failures", cb.name, cb.failureCount)
	}
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(Closed)
	cb.failureCount = 0
}

// transition must be called with mu held
func (cb *CircuitBreaker) transition(newState State) {
	if cb.state == newState {
		return
	}
	fiberlog.Debugf("CircuitBreaker: %s transitioned from %s to %s", cb.name, cb.state, newState)
	cb.state = newState
	cb.successCount = 0
	cb.lastStateChange = cb.now()
}
