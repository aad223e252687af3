package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/middleware"
)

// serveRequestID runs RequestID with the given inbound header value and
// returns the ID seen by the handler plus the response header.
func serveRequestID(t *testing.T, inbound string) (seen, echoed string) {
	t.Helper()

	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	handler.ServeHTTP(rec, req)

	return seen, rec.Header().Get("X-Request-ID")
}

func TestRequestID_GeneratesUUIDv4(t *testing.T) {
	t.Parallel()

	seen, echoed := serveRequestID(t, "")

	parsed, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, seen, echoed)
}

func TestRequestID_Inbound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		inbound string
		reused  bool
	}{
		{name: "plain token", inbound: "incoming-123", reused: true},
		{name: "uuid", inbound: "6f1c2a1e-3b0d-4c55-9a51-0f8a3d1b2c44", reused: true},
		{name: "control characters", inbound: "abc\x01def", reused: false},
		{name: "spaces", inbound: "two words", reused: false},
		{name: "too long", inbound: strings.Repeat("a", 129), reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			seen, echoed := serveRequestID(t, tt.inbound)

			assert.Equal(t, seen, echoed)
			if tt.reused {
				assert.Equal(t, tt.inbound, seen)
				return
			}
			assert.NotEqual(t, tt.inbound, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err)
		})
	}
}

func TestRequestID_UniquenessAcrossRequests(t *testing.T) {
	t.Parallel()

	ids := make(map[string]struct{})
	for range 100 {
		seen, _ := serveRequestID(t, "")
		ids[seen] = struct{}{}
	}

	assert.Len(t, ids, 100)
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, middleware.RequestIDFromContext(context.Background()))

	ctx := middleware.WithRequestID(context.Background(), "test-id")
	assert.Equal(t, "test-id", middleware.RequestIDFromContext(ctx))
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		inbound       string
		wantFromReqID bool
	}{
		{name: "reuses inbound header", inbound: "corr-abc"},
		{name: "falls back to request id", inbound: "", wantFromReqID: true},
		{name: "malformed header falls back", inbound: "bad\nvalue", wantFromReqID: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := middleware.RequestID()(
				middleware.CorrelationID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
					seen = middleware.CorrelationIDFromContext(r.Context())
				})),
			)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("X-Request-ID", "req-1")
			if tt.inbound != "" {
				req.Header["X-Correlation-Id"] = []string{tt.inbound}
			}
			handler.ServeHTTP(rec, req)

			want := tt.inbound
			if tt.wantFromReqID {
				want = "req-1"
			}
			assert.Equal(t, want, seen)
			assert.Equal(t, want, rec.Header().Get("X-Correlation-ID"))
		})
	}
}

func TestCorrelationIDFromContext(t *testing.T) {
	t.Parallel()

	assert.Empty(t, middleware.CorrelationIDFromContext(context.Background()))

	ctx := middleware.WithCorrelationID(context.Background(), "test-corr")
	assert.Equal(t, "test-corr", middleware.CorrelationIDFromContext(ctx))
}
