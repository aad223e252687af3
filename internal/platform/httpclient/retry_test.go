package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/config"
)

func TestRetryPolicy_Delay(t *testing.T) {
	t.Parallel()

	p := newRetryPolicy(config.RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Multiplier:      2.0,
	})

	tests := []struct {
		retry int
		base  time.Duration
	}{
		{retry: 1, base: 100 * time.Millisecond},
		{retry: 2, base: 200 * time.Millisecond},
		{retry: 3, base: 400 * time.Millisecond},
		// 100ms * 2^9 without the ceiling.
		{retry: 10, base: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("retry %d", tt.retry), func(t *testing.T) {
			t.Parallel()

			lo := time.Duration(float64(tt.base) * (1 - jitter))
			hi := time.Duration(float64(tt.base) * (1 + jitter))

			for range 200 {
				d := p.delay(tt.retry)
				assert.GreaterOrEqual(t, d, lo)
				assert.LessOrEqual(t, d, hi)
			}
		})
	}
}

func TestRetryPolicy_Attempts(t *testing.T) {
	t.Parallel()

	p := retryPolicy{maxAttempts: 4}

	tests := map[string]int{
		http.MethodGet:     4,
		http.MethodHead:    4,
		http.MethodOptions: 4,
		http.MethodTrace:   4,
		http.MethodPut:     4,
		http.MethodDelete:  4,
		http.MethodPost:    1,
		http.MethodPatch:   1,
		http.MethodConnect: 1,
	}

	for method, want := range tests {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, p.attempts(method))
		})
	}
}

func TestRetryableError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "wrapped cancellation", err: fmt.Errorf("dial: %w", context.Canceled), want: false},
		{name: "net error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "unknown error", err: errors.New("something failed"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, retryableError(tt.err))
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{status: http.StatusOK, want: false},
		{status: http.StatusFound, want: false},
		{status: http.StatusBadRequest, want: false},
		{status: http.StatusNotFound, want: false},
		{status: http.StatusTooManyRequests, want: true},
		{status: http.StatusInternalServerError, want: true},
		{status: http.StatusBadGateway, want: true},
		{status: http.StatusGatewayTimeout, want: true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, retryableStatus(tt.status))
		})
	}
}
