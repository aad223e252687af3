package ports

import (
	"context"
	"net/http"
)

// UpstreamResponse is a fully buffered answer from the wrapped application.
type UpstreamResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Upstream forwards inbound requests to the wrapped application.
// Implemented by the upstream client adapter; called by the proxy handler.
type Upstream interface {
	// Forward replays r against the upstream and returns its buffered answer.
	// Any status the upstream produces, 5xx included, is a response rather
	// than an error. Errors wrap domain.ErrUnavailable, domain.ErrTimeout or
	// domain.ErrUpstream and mean no usable response exists.
	Forward(ctx context.Context, r *http.Request) (*UpstreamResponse, error)
}
