// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/handlers"
)

// Routes collects the handlers mounted by NewRouter.
type Routes struct {
	// Proxy serves every path not claimed by another route.
	Proxy http.Handler
	// Health serves the liveness and readiness probes.
	Health *handlers.HealthHandler
	// Metrics is the scrape endpoint. It is not mounted when nil.
	Metrics http.Handler
	// Envelope wraps the proxied routes only. Nil leaves them bare.
	Envelope func(http.Handler) http.Handler
}

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. Probe and metrics
// responses are never enveloped.
func NewRouter(routes Routes, middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health/live", routes.Health.Liveness)
	r.Get("/health/ready", routes.Health.Readiness)
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	// Everything else goes to the upstream application.
	r.Group(func(r chi.Router) {
		if routes.Envelope != nil {
			r.Use(routes.Envelope)
		}
		r.Handle("/*", routes.Proxy)
	})

	return r
}
