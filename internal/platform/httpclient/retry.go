package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/config"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
)

// jitter spreads each delay uniformly over ±25%.
const jitter = 0.25

// retryPolicy decides how often a forwarded request is replayed and how long
// to wait in between.
type retryPolicy struct {
	maxAttempts int
	initial     time.Duration
	ceiling     time.Duration
	multiplier  float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	return retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		initial:     cfg.InitialInterval,
		ceiling:     cfg.MaxInterval,
		multiplier:  cfg.Multiplier,
	}
}

// attempts is the number of tries a request with method gets. Replaying a
// non-idempotent request (RFC 9110 section 9.2.2) could apply it twice
// upstream, so those get one.
func (p retryPolicy) attempts(method string) int {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return p.maxAttempts
	default:
		return 1
	}
}

// delay is the wait before retry n (1 for the first retry): exponential,
// capped at ceiling, then jittered.
func (p retryPolicy) delay(n int) time.Duration {
	d := min(float64(p.initial)*math.Pow(p.multiplier, float64(n-1)), float64(p.ceiling))
	d *= 1 + jitter*(2*rand.Float64()-1) //nolint:gosec // jitter needs no crypto randomness
	return time.Duration(max(d, 0))
}

// retryableStatus is true for 429 and any 5xx.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// retryableError is false only when the caller gave up (cancel or deadline).
// Transport failures, timeouts included, are worth another try.
func retryableError(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// doWithRetry sends req until it gets a non-retryable answer or runs out of
// attempts. The body is buffered once and replayed on every attempt. When the
// last attempt still has a retryable status, that response is stored in resp
// with an open body and an error is returned as well.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, resp **http.Response) error {
	if c.retry.maxAttempts < 1 {
		return fmt.Errorf("httpclient: retry.max_attempts must be >= 1, got %d", c.retry.maxAttempts)
	}

	body, err := bufferBody(req)
	if err != nil {
		return err
	}

	attempts := c.retry.attempts(req.Method)
	var lastErr error

	for n := range attempts {
		if n > 0 {
			if err := c.pause(ctx, req, n, lastErr); err != nil {
				return err
			}
		}
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}

		r, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
			if !retryableError(err) {
				return err
			}
		case !retryableStatus(r.StatusCode):
			*resp = r
			return nil
		case n == attempts-1:
			*resp = r
			return fmt.Errorf("HTTP %d from %s", r.StatusCode, c.serviceName)
		default:
			lastErr = fmt.Errorf("HTTP %d from %s", r.StatusCode, c.serviceName)
			_, _ = io.Copy(io.Discard, r.Body)
			_ = r.Body.Close()
		}
	}

	return lastErr
}

// bufferBody drains and closes req.Body. A nil body stays nil.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	defer func() { _ = req.Body.Close() }()

	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return b, nil
}

// pause logs retry n and waits out its delay unless ctx ends first.
func (c *Client) pause(ctx context.Context, req *http.Request, n int, cause error) error {
	d := c.retry.delay(n)

	logging.FromContext(ctx).WarnContext(ctx, "retrying upstream request",
		slog.String("operation", "httpclient.Do"),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("peer_service", c.serviceName),
		slog.Int("attempt", n+1),
		slog.Int("max_attempts", c.retry.maxAttempts),
		slog.Duration("backoff", d),
		slog.Any("error", cause),
	)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
