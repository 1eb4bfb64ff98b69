// Package config contains the definition of the application config structure
// and logic required to load it from defaults, a config file, and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/protocol"
)

const (
	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. LSW_MODE, LSW_WEATHER_USER_AGENT.
	EnvPrefix = "LSW"

	// DefaultNWSBaseURL is the National Weather Service API endpoint.
	DefaultNWSBaseURL = "https://api.weather.gov"

	// DefaultUserAgent identifies this service to the NWS API, which
	// requires a contact in the User-Agent header.
	DefaultUserAgent = "location-service-weather/1.0 (github.com/CarmenAPuccio/strands-location-service-weather)"
)

// Config represents the configuration of the application.
type Config struct {
	// Mode is the deployment mode: local, mcp, or bedrock-agent.
	Mode protocol.DeploymentMode `mapstructure:"mode"`

	Server     ServerConfig     `mapstructure:"server"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	Location   LocationConfig   `mapstructure:"location"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
}

// ServerConfig contains the MCP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// WeatherConfig contains the NWS client settings.
type WeatherConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// LocationConfig contains the Amazon Location Service settings.
type LocationConfig struct {
	Region string `mapstructure:"region"`
}

// ResilienceConfig contains the fallback mechanism settings.
type ResilienceConfig struct {
	Retry          RetryConfig          `mapstructure:"retry"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Cache          CacheConfig          `mapstructure:"cache"`

	// AlternativeTools enables falling back to a tool's registered
	// alternative when the primary call fails.
	AlternativeTools bool `mapstructure:"alternative_tools"`
}

// RetryConfig tunes the retry mechanism.
type RetryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
}

// CircuitBreakerConfig tunes the per-tool circuit breakers.
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// CacheConfig tunes the cached-response fallback.
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// setDefaults registers the default values for every setting. A zero-config
// load must leave local mode fully working.
func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(protocol.ModeLocal))

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("weather.base_url", DefaultNWSBaseURL)
	v.SetDefault("weather.user_agent", DefaultUserAgent)
	v.SetDefault("weather.timeout", 30*time.Second)
	v.SetDefault("weather.requests_per_second", 5.0)

	// No default region: location tools are opt-in and stay disabled until
	// an AWS region is configured.
	v.SetDefault("location.region", "")

	v.SetDefault("resilience.retry.enabled", true)
	v.SetDefault("resilience.retry.max_attempts", 3)
	v.SetDefault("resilience.retry.initial_interval", 500*time.Millisecond)
	v.SetDefault("resilience.circuit_breaker.enabled", true)
	v.SetDefault("resilience.circuit_breaker.failure_threshold", 5)
	v.SetDefault("resilience.circuit_breaker.timeout", 60*time.Second)
	v.SetDefault("resilience.cache.enabled", true)
	v.SetDefault("resilience.cache.ttl", 5*time.Minute)
	v.SetDefault("resilience.cache.max_entries", 256)
	v.SetDefault("resilience.alternative_tools", true)
}

// Load reads configuration from defaults, the optional config file, and
// LSW_-prefixed environment variables (in increasing precedence).
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the zero-config configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Defaults are static and validated by tests; this cannot fail at runtime.
		panic(err)
	}
	return cfg
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	mode, err := protocol.ParseDeploymentMode(string(c.Mode))
	if err != nil {
		return err
	}
	c.Mode = mode

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Weather.BaseURL == "" {
		return fmt.Errorf("weather base URL must not be empty")
	}
	if c.Weather.UserAgent == "" {
		return fmt.Errorf("weather user agent must not be empty")
	}
	if c.Weather.RequestsPerSecond <= 0 {
		return fmt.Errorf("weather requests per second must be positive")
	}
	if c.Resilience.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	if c.Resilience.CircuitBreaker.FailureThreshold < 1 {
		return fmt.Errorf("circuit breaker failure threshold must be at least 1")
	}
	if c.Resilience.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max entries must be at least 1")
	}
	if c.Resilience.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}
