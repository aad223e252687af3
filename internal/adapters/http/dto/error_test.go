package dto_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/domain"
)

func TestNewErrorResponse_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "ErrUnavailable maps to 503",
			err:        domain.ErrUnavailable,
			wantStatus: http.StatusServiceUnavailable,
			wantTitle:  "Service Unavailable",
		},
		{
			name:       "ErrTimeout maps to 504",
			err:        domain.ErrTimeout,
			wantStatus: http.StatusGatewayTimeout,
			wantTitle:  "Gateway Timeout",
		},
		{
			name:       "ErrUpstream maps to 502",
			err:        domain.ErrUpstream,
			wantStatus: http.StatusBadGateway,
			wantTitle:  "Bad Gateway",
		},
		{
			name:       "wrapped sentinel preserves mapping",
			err:        fmt.Errorf("GET /api/v1/items: %w", domain.ErrTimeout),
			wantStatus: http.StatusGatewayTimeout,
			wantTitle:  "Gateway Timeout",
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("oops"),
			wantStatus: http.StatusInternalServerError,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/v1/items/42", nil)
			got := dto.NewErrorResponse(r, tt.err)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantTitle, got.Title)
		})
	}
}

func TestNewErrorResponse_Fields(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/items?dry_run=1", nil)
	err := fmt.Errorf("POST /api/v1/items: %w", domain.ErrUpstream)

	got := dto.NewErrorResponse(r, err)

	assert.Equal(t, "about:blank", got.Type)
	assert.Equal(t, "/api/v1/items?dry_run=1", got.Instance)
	assert.Equal(t, err.Error(), got.Detail)
}

func TestNewErrorResponse_HidesUnknownDetail(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	got := dto.NewErrorResponse(r, errors.New("dial tcp 10.0.0.7:5432: secret topology"))

	assert.Equal(t, "Internal Server Error", got.Detail)
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)

	dto.WriteErrorResponse(w, r, domain.ErrUnavailable)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "about:blank", resp.Type)
	assert.Equal(t, "/api/v1/items", resp.Instance)
	assert.Equal(t, domain.ErrUnavailable.Error(), resp.Detail)
}
