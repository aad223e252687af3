package middleware

import (
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/envelope"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/telemetry"
)

// Chain composes middleware so that the first argument is the outermost:
// Chain(a, b)(h) serves like a(b(h)).
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}

// Proxied is the stack placed in front of the upstream proxy. Timeout runs
// inside Envelope so an expired deadline is shaped like any other failure.
func Proxied(mw *envelope.Middleware, metrics *telemetry.Metrics, timeout time.Duration) func(http.Handler) http.Handler {
	return Chain(
		Envelope(mw, metrics),
		Timeout(timeout),
	)
}
