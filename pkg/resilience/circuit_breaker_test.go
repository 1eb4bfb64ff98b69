package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerInitialState(t *testing.T) {
	t.Parallel()

	cb := newCircuitBreaker(5, 60*time.Second, "current_weather")

	assert.Equal(t, CircuitClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailureCount())
	assert.True(t, cb.CanAttempt())
}

func TestCircuitBreakerClosedToOpen(t *testing.T) {
	t.Parallel()

	threshold := 3
	cb := newCircuitBreaker(threshold, 60*time.Second, "current_weather")

	// Failures below threshold keep the circuit closed
	for i := 0; i < threshold-1; i++ {
		cb.RecordFailure()
		assert.Equal(t, CircuitClosed, cb.GetState())
		assert.True(t, cb.CanAttempt())
	}

	// One more failure opens the circuit
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.Equal(t, threshold, cb.GetFailureCount())
	assert.False(t, cb.CanAttempt())
}

func TestCircuitBreakerOpenToHalfOpen(t *testing.T) {
	t.Parallel()

	timeout := 50 * time.Millisecond
	cb := newCircuitBreaker(1, timeout, "current_weather")

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.False(t, cb.CanAttempt())

	time.Sleep(timeout + 20*time.Millisecond)

	// First attempt after the timeout transitions to half-open
	assert.True(t, cb.CanAttempt())
	assert.Equal(t, CircuitHalfOpen, cb.GetState())

	// Only one probe is allowed while the test is in flight
	assert.False(t, cb.CanAttempt())
}

func TestCircuitBreakerHalfOpenToClosed(t *testing.T) {
	t.Parallel()

	cb := newCircuitBreaker(1, 10*time.Millisecond, "weather_alerts")
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)

	assert.True(t, cb.CanAttempt())
	cb.RecordSuccess()

	assert.Equal(t, CircuitClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailureCount())
	assert.True(t, cb.CanAttempt())
}

func TestCircuitBreakerHalfOpenToOpen(t *testing.T) {
	t.Parallel()

	cb := newCircuitBreaker(1, 10*time.Millisecond, "weather_alerts")
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)

	assert.True(t, cb.CanAttempt())
	cb.RecordFailure()

	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.False(t, cb.CanAttempt())
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	cb := newCircuitBreaker(3, time.Minute, "search_places")
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	// Consecutive-failure counting starts over
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.GetState())
}

func TestCircuitBreakerConcurrentAccess(t *testing.T) {
	t.Parallel()

	cb := newCircuitBreaker(1000, time.Minute, "current_weather")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				cb.CanAttempt()
				cb.RecordFailure()
				cb.RecordSuccess()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, CircuitClosed, cb.GetState())
}
