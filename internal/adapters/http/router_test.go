package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapthttp "github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/middleware"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/envelope"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/ports"
	"github.com/jsamuelsen11/go-envelope-gateway/mocks"
)

type testRouter struct {
	handler  http.Handler
	upstream *mocks.MockUpstream
	registry *mocks.MockHealthRegistry
}

func newTestRouter(t *testing.T, metrics http.Handler, middlewares ...func(http.Handler) http.Handler) testRouter {
	t.Helper()

	upstream := mocks.NewMockUpstream(t)
	registry := mocks.NewMockHealthRegistry(t)
	mw := envelope.New(envelope.NewBuilder(envelope.Options{ExposeErrors: true}))

	h := adapthttp.NewRouter(adapthttp.Routes{
		Proxy:    handlers.NewProxyHandler(upstream),
		Health:   handlers.NewHealthHandler(registry),
		Metrics:  metrics,
		Envelope: middleware.Proxied(mw, nil, 5*time.Second),
	}, middlewares...)

	return testRouter{handler: h, upstream: upstream, registry: registry}
}

func (tr testRouter) serve(method, path, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	tr.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	tr := newTestRouter(t, http.NotFoundHandler())

	chiRouter, ok := tr.handler.(*chi.Mux)
	require.True(t, ok, "router is not *chi.Mux")

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	for _, key := range []string{
		"GET /health/live",
		"GET /health/ready",
		"GET /metrics",
		"GET /*",
		"POST /*",
		"DELETE /*",
	} {
		assert.True(t, registered[key], "route %s not registered", key)
	}
}

func TestRouter_MetricsOmittedWhenNil(t *testing.T) {
	t.Parallel()

	tr := newTestRouter(t, nil)
	tr.upstream.EXPECT().Forward(mock.Anything, mock.MatchedBy(func(r *http.Request) bool {
		return r.URL.Path == "/metrics"
	})).Return(&ports.UpstreamResponse{Status: http.StatusNotFound, Header: make(http.Header)}, nil)

	rec := tr.serve(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	tr := newTestRouter(t, nil, testMW)
	tr.registry.EXPECT().CheckAll(mock.Anything).Return(map[string]error{})

	tr.serve(http.MethodGet, "/health/ready", "")

	assert.True(t, called, "middleware was not called")
}

func TestRouter_HealthIsNotEnveloped(t *testing.T) {
	t.Parallel()

	tr := newTestRouter(t, nil)

	rec := tr.serve(http.MethodGet, "/health/live", "application/json")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ProxiedRequestIsEnveloped(t *testing.T) {
	t.Parallel()

	tr := newTestRouter(t, nil)
	tr.upstream.EXPECT().Forward(mock.Anything, mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == http.MethodPut && r.URL.Path == "/api/v4/orders/9"
	})).Return(&ports.UpstreamResponse{
		Status: http.StatusUnprocessableEntity,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"errors":["qty"]}`),
	}, nil)

	rec := tr.serve(http.MethodPut, "/api/v4/orders/9", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "/api/v4/orders/9", env["location"])
	assert.InDelta(t, 4, env["version"], 0)
	assert.Equal(t, map[string]any{"errors": []any{"qty"}}, env["body"])
}

func TestRouter_RootIsProxied(t *testing.T) {
	t.Parallel()

	tr := newTestRouter(t, nil)
	tr.upstream.EXPECT().Forward(mock.Anything, mock.Anything).Return(&ports.UpstreamResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"text/html"}},
		Body:   []byte("<h1>home</h1>"),
	}, nil)

	rec := tr.serve(http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>home</h1>", rec.Body.String())
}
