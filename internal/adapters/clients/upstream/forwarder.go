// Package upstream implements the outbound adapter that replays inbound
// requests against the wrapped application. It owns URL rewriting, header
// hygiene, bounded body buffering, and the translation of transport failures
// into domain errors. Resilience (breaker, retry, tracing) comes from the
// underlying [httpclient.Client].
package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/domain"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/httpclient"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.Upstream      = (*Forwarder)(nil)
	_ ports.HealthChecker = (*Forwarder)(nil)
)

// hopHeaders are connection-scoped and never forwarded (RFC 9110 section 7.6.1).
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays requests to the upstream configured as the client's base
// URL and buffers the answer so the envelope can reshape it.
type Forwarder struct {
	client  *httpclient.Client
	base    *url.URL
	maxBody int64
}

// NewForwarder creates a Forwarder over client. maxResponseSize bounds how
// many body bytes are buffered per upstream response.
func NewForwarder(client *httpclient.Client, maxResponseSize int64) (*Forwarder, error) {
	base, err := url.Parse(client.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("upstream base url %q is not absolute", client.BaseURL())
	}

	return &Forwarder{client: client, base: base, maxBody: maxResponseSize}, nil
}

// Forward implements [ports.Upstream]. The upstream's status and headers are
// relayed as-is, minus hop-by-hop headers. Errors wrap a domain sentinel and
// keep the transport cause in the chain.
func (f *Forwarder) Forward(ctx context.Context, r *http.Request) (*ports.UpstreamResponse, error) {
	var body io.Reader
	if r.ContentLength != 0 && r.Body != nil {
		body = r.Body
	}

	out, err := http.NewRequestWithContext(ctx, r.Method, f.target(r.URL).String(), body)
	if err != nil {
		return nil, fmt.Errorf("building upstream request for %s %s: %w: %w", r.Method, r.URL.Path, domain.ErrUpstream, err)
	}
	out.Header = outboundHeader(r)

	resp, err := f.client.Do(ctx, out)
	if resp == nil {
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.URL.Path, translateError(err))
	}
	defer closeBody(ctx, resp)

	if err != nil {
		// Retries were exhausted on a retryable status. The last answer is
		// still the upstream's answer and is relayed unchanged.
		logging.FromContext(ctx).WarnContext(ctx, "relaying upstream failure status",
			slog.String("operation", "upstream.Forward"),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", err),
		)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading upstream body for %s %s: %w", r.Method, r.URL.Path, translateError(err))
	}
	if int64(len(payload)) > f.maxBody {
		return nil, fmt.Errorf("upstream body for %s %s exceeds %d bytes: %w", r.Method, r.URL.Path, f.maxBody, domain.ErrUpstream)
	}

	header := resp.Header.Clone()
	removeHopHeaders(header)
	header.Del("Content-Length")

	return &ports.UpstreamResponse{
		Status: resp.StatusCode,
		Header: header,
		Body:   payload,
	}, nil
}

// Name implements [ports.HealthChecker] by delegating to the client.
func (f *Forwarder) Name() string {
	return f.client.Name()
}

// HealthCheck implements [ports.HealthChecker]; it reflects the client's
// circuit breaker and makes no network call.
func (f *Forwarder) HealthCheck(ctx context.Context) error {
	return f.client.HealthCheck(ctx)
}

// target maps an inbound URL onto the upstream base URL, keeping the base
// path as a prefix and carrying the raw query through untouched.
func (f *Forwarder) target(in *url.URL) *url.URL {
	u := *f.base
	u.Path = strings.TrimSuffix(f.base.Path, "/") + in.Path
	u.RawPath = ""
	if in.RawPath != "" {
		u.RawPath = strings.TrimSuffix(f.base.EscapedPath(), "/") + in.RawPath
	}
	u.RawQuery = in.RawQuery
	u.Fragment = ""
	return &u
}

// outboundHeader copies the inbound headers for the upstream request.
// Accept-Encoding is dropped so the transport negotiates compression itself
// and hands back a decoded body the envelope can parse.
func outboundHeader(r *http.Request) http.Header {
	h := r.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	removeHopHeaders(h)
	h.Del("Accept-Encoding")

	if clientIP, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		if prior := h.Values("X-Forwarded-For"); len(prior) > 0 {
			clientIP = strings.Join(prior, ", ") + ", " + clientIP
		}
		h.Set("X-Forwarded-For", clientIP)
	}
	if r.Host != "" {
		h.Set("X-Forwarded-Host", r.Host)
	}
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	h.Set("X-Forwarded-Proto", proto)

	return h
}

// removeHopHeaders deletes hop-by-hop headers, including any named in the
// Connection header.
func removeHopHeaders(h http.Header) {
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

// closeBody closes an HTTP response body and logs on failure.
func closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "failed to close upstream response body",
			slog.String("error", err.Error()),
		)
	}
}
