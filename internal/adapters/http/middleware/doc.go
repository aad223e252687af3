// Package middleware holds the gateway's inbound HTTP middleware.
//
// Every request passes through
//
//	Recovery → RequestID → CorrelationID → OpenTelemetry → Logging
//
// and proxied requests continue through Proxied (Envelope → Timeout) before
// reaching the upstream proxy. Health and metrics routes stop after Logging,
// so their bodies are never enveloped.
package middleware
