package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/config"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/errors"
)

func fastConfig() config.ResilienceConfig {
	return config.ResilienceConfig{
		Retry: config.RetryConfig{
			Enabled:         true,
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
		},
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			Timeout:          time.Minute,
		},
		Cache: config.CacheConfig{
			Enabled:    true,
			TTL:        time.Minute,
			MaxEntries: 16,
		},
		AlternativeTools: true,
	}
}

func point() map[string]any {
	return map[string]any{"latitude": 47.6, "longitude": -122.3}
}

func TestExecutePrimarySuccess(t *testing.T) {
	t.Parallel()

	m := NewManager(fastConfig())
	outcome, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return "sunny", nil }, nil)
	require.NoError(t, err)

	assert.Equal(t, "sunny", outcome.Value)
	assert.Equal(t, SourcePrimary, outcome.Source)
	assert.Equal(t, 1, outcome.Attempts)
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	t.Parallel()

	m := NewManager(fastConfig())
	calls := 0
	outcome, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) {
			calls++
			if calls < 3 {
				return nil, errors.NewNetworkError("flaky", nil)
			}
			return "sunny", nil
		}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, SourcePrimary, outcome.Source)
	assert.Equal(t, 3, outcome.Attempts)
}

func TestExecuteRetriesExhausted(t *testing.T) {
	t.Parallel()

	m := NewManager(fastConfig())
	calls := 0
	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) {
			calls++
			return nil, errors.NewNetworkError("down", nil)
		}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, errors.IsNetwork(err))
}

func TestExecuteDoesNotRetryValidationErrors(t *testing.T) {
	t.Parallel()

	m := NewManager(fastConfig())
	calls := 0
	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) {
			calls++
			return nil, errors.NewValidationError("bad latitude", nil)
		},
		func(context.Context) (any, error) {
			t.Fatal("alternative must not run for validation errors")
			return nil, nil
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errors.IsValidation(err))
}

func TestExecuteAlternativeTool(t *testing.T) {
	t.Parallel()

	m := NewManager(fastConfig())
	outcome, err := m.Execute(context.Background(), "weather_forecast", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("boom", nil) },
		func(context.Context) (any, error) { return "degraded", nil })
	require.NoError(t, err)

	assert.Equal(t, "degraded", outcome.Value)
	assert.Equal(t, SourceAlternative, outcome.Source)
	assert.Equal(t, 3, outcome.Attempts)
}

func TestExecuteAlternativeDisabled(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.AlternativeTools = false
	cfg.Cache.Enabled = false
	m := NewManager(cfg)

	altCalled := false
	_, err := m.Execute(context.Background(), "weather_forecast", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("boom", nil) },
		func(context.Context) (any, error) { altCalled = true; return "degraded", nil })

	require.Error(t, err)
	assert.False(t, altCalled)
}

func TestExecuteCachedResponse(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.AlternativeTools = false
	m := NewManager(cfg)

	// Prime the cache with a successful call
	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return "sunny", nil }, nil)
	require.NoError(t, err)

	// Now the upstream is down; the cached result is served
	outcome, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)
	require.NoError(t, err)

	assert.Equal(t, "sunny", outcome.Value)
	assert.Equal(t, SourceCache, outcome.Source)
}

func TestExecuteCacheMissPropagatesPrimaryError(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.AlternativeTools = false
	m := NewManager(cfg)

	_, err := m.Execute(context.Background(), "current_weather",
		map[string]any{"latitude": 1.0, "longitude": 1.0},
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)

	assert.True(t, errors.IsUpstream(err))
}

func TestExecuteCacheIsPerArguments(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.AlternativeTools = false
	m := NewManager(cfg)

	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return "seattle weather", nil }, nil)
	require.NoError(t, err)

	// Different coordinates must not hit the Seattle entry
	_, err = m.Execute(context.Background(), "current_weather",
		map[string]any{"latitude": 40.7, "longitude": -74.0},
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)
	assert.Error(t, err)
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.Retry.Enabled = false
	cfg.AlternativeTools = false
	cfg.Cache.Enabled = false
	cfg.CircuitBreaker.FailureThreshold = 3
	m := NewManager(cfg)

	fail := func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }

	for i := 0; i < 3; i++ {
		_, err := m.Execute(context.Background(), "current_weather", point(), fail, nil)
		require.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, m.BreakerState("current_weather"))

	// With the circuit open the primary is not invoked at all
	called := false
	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { called = true; return "sunny", nil }, nil)

	require.Error(t, err)
	assert.False(t, called)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitOpenStillServesCache(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.Retry.Enabled = false
	cfg.AlternativeTools = false
	cfg.CircuitBreaker.FailureThreshold = 1
	m := NewManager(cfg)

	// Prime cache, then open the circuit
	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return "sunny", nil }, nil)
	require.NoError(t, err)

	_, err = m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)
	require.NoError(t, err) // served from cache
	require.Equal(t, CircuitOpen, m.BreakerState("current_weather"))

	outcome, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return nil, stderrors.New("unreachable") }, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, outcome.Source)
}

func TestCircuitHalfOpensAfterTimeout(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.Retry.Enabled = false
	cfg.AlternativeTools = false
	cfg.Cache.Enabled = false
	cfg.CircuitBreaker.FailureThreshold = 1
	cfg.CircuitBreaker.Timeout = 20 * time.Millisecond
	m := NewManager(cfg)

	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)
	require.Error(t, err)
	require.Equal(t, CircuitOpen, m.BreakerState("current_weather"))

	time.Sleep(40 * time.Millisecond)

	// Recovery probe goes through and closes the circuit
	outcome, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return "sunny", nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, outcome.Source)
	assert.Equal(t, CircuitClosed, m.BreakerState("current_weather"))
}

func TestBreakersAreIndependentPerTool(t *testing.T) {
	t.Parallel()

	cfg := fastConfig()
	cfg.Retry.Enabled = false
	cfg.AlternativeTools = false
	cfg.Cache.Enabled = false
	cfg.CircuitBreaker.FailureThreshold = 1
	m := NewManager(cfg)

	_, err := m.Execute(context.Background(), "current_weather", point(),
		func(context.Context) (any, error) { return nil, errors.NewUpstreamError("down", nil) }, nil)
	require.Error(t, err)

	assert.Equal(t, CircuitOpen, m.BreakerState("current_weather"))
	assert.Equal(t, CircuitClosed, m.BreakerState("weather_alerts"))

	outcome, err := m.Execute(context.Background(), "weather_alerts", point(),
		func(context.Context) (any, error) { return "no alerts", nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, SourcePrimary, outcome.Source)
}
