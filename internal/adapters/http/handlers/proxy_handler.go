package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/ports"
)

// ProxyHandler relays every request it receives to the upstream application
// and writes the upstream response back unchanged. Shaping the response is
// left to the Envelope middleware in front of it.
type ProxyHandler struct {
	upstream ports.Upstream
}

// NewProxyHandler creates a new ProxyHandler forwarding to upstream.
func NewProxyHandler(upstream ports.Upstream) *ProxyHandler {
	return &ProxyHandler{upstream: upstream}
}

// ServeHTTP implements http.Handler. Upstream failures are reported to the
// enclosing Envelope middleware; without one they are written as problem
// details.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.upstream.Forward(ctx, r)
	if err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "upstream request failed",
			slog.String("operation", "ProxyHandler.ServeHTTP"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		if !middleware.ReportFailure(r, err) {
			dto.WriteErrorResponse(w, r, err)
		}
		return
	}

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.Status)
	if len(resp.Body) == 0 {
		return
	}
	if _, err := w.Write(resp.Body); err != nil {
		logging.FromContext(ctx).DebugContext(ctx, "writing upstream body",
			slog.String("operation", "ProxyHandler.ServeHTTP"),
			slog.Any("error", err),
		)
	}
}
