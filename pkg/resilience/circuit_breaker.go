// Package resilience provides the fallback mechanism chain that tool
// execution runs through: retry with exponential backoff, per-tool circuit
// breaking, alternative-tool fallback, and cached-response fallback.
package resilience

import (
	"sync"
	"time"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	// CircuitClosed indicates normal operation - requests pass through
	CircuitClosed CircuitState = "closed"
	// CircuitOpen indicates failing state - requests fail immediately
	CircuitOpen CircuitState = "open"
	// CircuitHalfOpen indicates recovery testing - limited requests allowed
	CircuitHalfOpen CircuitState = "half_open"
)

// circuitBreaker manages circuit breaker state for a single tool.
// It prevents hammering a failing upstream by tracking consecutive failures
// and transitioning through states: Closed → Open → HalfOpen → Closed.
type circuitBreaker struct {
	mu sync.Mutex

	// name identifies which tool this circuit breaker belongs to, for logging
	name string

	state            CircuitState
	failureCount     int
	failureThreshold int
	timeout          time.Duration

	lastStateChange time.Time
	lastFailureTime time.Time

	// For half-open state management
	halfOpenTestInProgress bool
}

// newCircuitBreaker creates a new circuit breaker with the specified configuration.
func newCircuitBreaker(failureThreshold int, timeout time.Duration, name string) *circuitBreaker {
	return &circuitBreaker{
		name:             name,
		state:            CircuitClosed,
		failureThreshold: failureThreshold,
		timeout:          timeout,
		lastStateChange:  time.Now(),
	}
}

// RecordSuccess records a successful operation.
// Resets failure count and transitions to Closed state if not already there.
func (cb *circuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	previousState := cb.state
	cb.failureCount = 0
	cb.halfOpenTestInProgress = false

	if cb.state != CircuitClosed {
		cb.state = CircuitClosed
		cb.lastStateChange = time.Now()

		if previousState == CircuitHalfOpen {
			logger.Infof("Circuit breaker for tool %s CLOSED (recovery successful)", cb.name)
		}
	}
}

// RecordFailure records a failed operation.
// Increments failure count and transitions to Open if threshold exceeded.
func (cb *circuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailureTime = time.Now()
	cb.halfOpenTestInProgress = false

	if cb.state == CircuitClosed && cb.failureCount >= cb.failureThreshold {
		cb.state = CircuitOpen
		cb.lastStateChange = time.Now()
		logger.Warnf("Circuit breaker for tool %s OPENED (threshold exceeded)", cb.name)
	} else if cb.state == CircuitHalfOpen {
		// Failed in half-open state, go back to open
		cb.state = CircuitOpen
		cb.lastStateChange = time.Now()
		logger.Warnf("Circuit breaker for tool %s returned to OPEN from half-open (recovery failed)", cb.name)
	}
}

// CanAttempt checks if an operation should be allowed based on circuit state.
// Returns true if the operation can proceed, false if it should be rejected.
func (cb *circuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		// Check if timeout has elapsed to transition to half-open
		if time.Since(cb.lastStateChange) >= cb.timeout {
			cb.state = CircuitHalfOpen
			cb.lastStateChange = time.Now()
			cb.halfOpenTestInProgress = true
			return true
		}
		return false

	case CircuitHalfOpen:
		// Only allow one test request at a time in half-open state
		if cb.halfOpenTestInProgress {
			return false
		}
		cb.halfOpenTestInProgress = true
		return true

	default:
		return false
	}
}

// GetState returns the current state of the circuit breaker.
func (cb *circuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetFailureCount returns the current failure count.
func (cb *circuitBreaker) GetFailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}
