// Package config provides configuration loading and validation for the gateway.
// Configuration is loaded from YAML files with environment variable overrides
// using a layered system: defaults -> base.yaml -> {profile}.yaml -> env vars.
package config

import (
	"time"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/envelope"
)

// Config holds all configuration for the gateway.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Envelope  EnvelopeConfig  `koanf:"envelope"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
	// RequestTimeout bounds a proxied request. It must be shorter than
	// WriteTimeout so the timeout envelope can still be written.
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EnvelopeConfig holds response envelope settings.
type EnvelopeConfig struct {
	// ExposeErrors leaks failure messages and the original response body
	// into error envelopes. Keep it off outside development.
	ExposeErrors bool `koanf:"expose_errors"`
}

// Options converts the config section into the envelope builder's options.
func (e EnvelopeConfig) Options() envelope.Options {
	return envelope.Options{ExposeErrors: e.ExposeErrors}
}

// UpstreamConfig holds settings for the wrapped upstream application.
type UpstreamConfig struct {
	BaseURL         string               `koanf:"base_url"`
	Timeout         time.Duration        `koanf:"timeout"`
	MaxResponseSize int64                `koanf:"max_response_size"`
	Retry           RetryConfig          `koanf:"retry"`
	CircuitBreaker  CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// RetryConfig holds retry policy settings with exponential backoff.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"`
	Timeout       time.Duration `koanf:"timeout"`
	HalfOpenLimit int           `koanf:"half_open_limit"`
}

// TelemetryConfig holds OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}
