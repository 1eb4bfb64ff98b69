package resilience

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
)

// ErrCircuitOpen is returned when a tool's circuit breaker rejects a call.
var ErrCircuitOpen = stderrors.New("circuit breaker open")

// Operation is a single tool invocation the fallback chain runs.
type Operation func(ctx context.Context) (any, error)

// Source identifies which mechanism produced a result.
type Source string

const (
	// SourcePrimary means the primary tool call succeeded (possibly after retries).
	SourcePrimary Source = "primary"

	// SourceAlternative means the registered alternative tool produced the result.
	SourceAlternative Source = "alternative_tool"

	// SourceCache means a previously cached result was served.
	SourceCache Source = "cached_response"
)

// Outcome is the result of running an operation through the fallback chain.
type Outcome struct {
	// Value is the tool result.
	Value any

	// Source is the mechanism that produced Value.
	Source Source

	// Attempts is the number of times the primary operation was invoked.
	Attempts int
}

// Manager runs tool operations through the fallback mechanism chain:
// retry with exponential backoff and a per-tool circuit breaker around the
// primary call, then the alternative tool, then the cached response.
type Manager struct {
	cfg config.ResilienceConfig

	mu       sync.Mutex
	breakers map[string]*circuitBreaker

	cache *resultCache
}

// NewManager creates a fallback manager from the resilience configuration.
func NewManager(cfg config.ResilienceConfig) *Manager {
	m := &Manager{
		cfg:      cfg,
		breakers: make(map[string]*circuitBreaker),
	}
	if cfg.Cache.Enabled {
		m.cache = newResultCache(cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	return m
}

// Execute runs the primary operation through retry and circuit breaking,
// then walks the fallback chain on failure. The alternative operation may be
// nil when the tool has no registered alternative.
//
// Validation failures are deterministic: the same arguments fail the same
// way against the alternative, so they short-circuit the chain.
func (m *Manager) Execute(
	ctx context.Context,
	toolName string,
	args map[string]any,
	primary Operation,
	alternative Operation,
) (*Outcome, error) {
	key := CacheKey(toolName, args)

	value, attempts, primaryErr := m.executePrimary(ctx, toolName, primary)
	if primaryErr == nil {
		if m.cache != nil {
			m.cache.Put(key, value)
		}
		return &Outcome{Value: value, Source: SourcePrimary, Attempts: attempts}, nil
	}

	if errors.IsValidation(primaryErr) {
		return nil, primaryErr
	}

	logger.Warnf("Primary call for tool %s failed after %d attempt(s): %v", toolName, attempts, primaryErr)

	if m.cfg.AlternativeTools && alternative != nil {
		altValue, altErr := alternative(ctx)
		if altErr == nil {
			logger.Infof("Tool %s served by alternative tool", toolName)
			return &Outcome{Value: altValue, Source: SourceAlternative, Attempts: attempts}, nil
		}
		logger.Warnf("Alternative for tool %s failed: %v", toolName, altErr)
	}

	if m.cache != nil {
		if cached, ok := m.cache.Get(key); ok {
			logger.Infof("Tool %s served from response cache", toolName)
			return &Outcome{Value: cached, Source: SourceCache, Attempts: attempts}, nil
		}
	}

	return nil, primaryErr
}

// BreakerState reports the circuit state for a tool. Tools without traffic
// report a closed circuit.
func (m *Manager) BreakerState(toolName string) CircuitState {
	m.mu.Lock()
	defer m.mu.Unlock()

	if breaker, exists := m.breakers[toolName]; exists {
		return breaker.GetState()
	}
	return CircuitClosed
}

// executePrimary calls the primary operation with retry and circuit breaking.
func (m *Manager) executePrimary(
	ctx context.Context,
	toolName string,
	primary Operation,
) (any, int, error) {
	breaker := m.breakerFor(toolName)

	maxTries := 1
	initialInterval := 500 * time.Millisecond
	if m.cfg.Retry.Enabled {
		maxTries = m.cfg.Retry.MaxAttempts
		if m.cfg.Retry.InitialInterval > 0 {
			initialInterval = m.cfg.Retry.InitialInterval
		}
	}

	// Configure exponential backoff
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = initialInterval
	expBackoff.MaxInterval = 60 * initialInterval // Cap at 60x the initial delay
	expBackoff.Reset()

	attempts := 0
	operation := func() (any, error) {
		if breaker != nil && !breaker.CanAttempt() {
			return nil, backoff.Permanent(errors.NewUpstreamError(
				fmt.Sprintf("tool %s rejected", toolName), ErrCircuitOpen))
		}

		attempts++
		value, err := primary(ctx)
		if err != nil {
			if breaker != nil {
				breaker.RecordFailure()
			}
			if !errors.IsRetryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		if breaker != nil {
			breaker.RecordSuccess()
		}
		return value, nil
	}

	value, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(maxTries)), // #nosec G115 -- validated >= 1 by config
		backoff.WithNotify(func(attemptErr error, duration time.Duration) {
			logger.Debugf("Retrying tool %s after %v: %v", toolName, duration, attemptErr)
		}),
	)
	return value, attempts, err
}

// breakerFor returns the circuit breaker for a tool, creating it on first
// use. Returns nil when circuit breaking is disabled.
func (m *Manager) breakerFor(toolName string) *circuitBreaker {
	if !m.cfg.CircuitBreaker.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	breaker, exists := m.breakers[toolName]
	if !exists {
		breaker = newCircuitBreaker(m.cfg.CircuitBreaker.FailureThreshold, m.cfg.CircuitBreaker.Timeout, toolName)
		m.breakers[toolName] = breaker
	}
	return breaker
}
