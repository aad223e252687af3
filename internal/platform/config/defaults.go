package config

const (
	defaultServerPort = 8080

	defaultMaxResponseSize = 10 << 20 // 10 MB

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"server.request_timeout": "9s",

		"log.level":  "info",
		"log.format": "json",

		"envelope.expose_errors": false,

		"upstream.base_url":                        "http://localhost:8081",
		"upstream.timeout":                         "30s",
		"upstream.max_response_size":               defaultMaxResponseSize,
		"upstream.retry.max_attempts":              defaultRetryMaxAttempts,
		"upstream.retry.initial_interval":          "100ms",
		"upstream.retry.max_interval":              "10s",
		"upstream.retry.multiplier":                defaultRetryMultiplier,
		"upstream.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"upstream.circuit_breaker.timeout":         "30s",
		"upstream.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "envelope-gateway",
	}
}
