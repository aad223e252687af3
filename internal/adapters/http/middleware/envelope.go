package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/envelope"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/telemetry"
)

type failureKey struct{}

// failureSlot records the first failure a handler reports. It is shared with
// handlers that may run on another goroutine (see Timeout).
type failureSlot struct {
	mu  sync.Mutex
	err error
}

func (s *failureSlot) set(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *failureSlot) get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ReportFailure tells the enclosing Envelope middleware that the handler
// failed with err. Whatever the handler wrote is then kept only as the
// original response of the error envelope. Only the first report counts.
//
// It returns false when no Envelope middleware wraps the request (or err is
// nil), in which case the caller must write its own error response.
func ReportFailure(r *http.Request, err error) bool {
	slot, ok := r.Context().Value(failureKey{}).(*failureSlot)
	if !ok || err == nil {
		return false
	}
	slot.set(err)
	return true
}

// Envelope returns middleware that runs the downstream handler as an
// [envelope.Application]: its output is captured, shaped by mw, and only
// then written to the client. Failures (ReportFailure, panics, bodies that
// should be JSON but are not) become error responses and never escape.
// A panic with [http.ErrAbortHandler] is re-raised so net/http can abort the
// connection.
//
// If metrics is nil, metric recording is skipped.
func Envelope(mw *envelope.Middleware, metrics *telemetry.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			res := mw.Call(ctx, envelopeRequest(r), handlerApplication{next: next, r: r})
			if errors.Is(res.Err, http.ErrAbortHandler) {
				panic(http.ErrAbortHandler)
			}

			if res.Outcome.Failed() {
				logging.FromContext(ctx).ErrorContext(ctx, "request failed inside envelope",
					slog.String("operation", "middleware.Envelope"),
					slog.String("path", r.URL.Path),
					slog.String("outcome", string(res.Outcome)),
					slog.Any("error", res.Err),
				)
			}

			trace.SpanFromContext(ctx).SetAttributes(telemetry.AttrOutcome.String(string(res.Outcome)))
			if metrics != nil {
				metrics.EnvelopeResponseTotal.Add(ctx, 1, metric.WithAttributes(
					telemetry.AttrOutcome.String(string(res.Outcome)),
					telemetry.AttrHTTPStatus.Int(res.Response.Status),
				))
			}

			writeEnvelopeResponse(w, res)
		})
	}
}

// envelopeRequest derives the envelope's view of r. When the router stripped
// a prefix, r.URL.Path is the routed path and the originally requested path
// becomes the alternate that location and version are read from.
func envelopeRequest(r *http.Request) envelope.Request {
	req := envelope.Request{
		Path:   r.URL.Path,
		Accept: r.Header.Get("Accept"),
	}
	if r.RequestURI == "" {
		return req
	}
	if u, err := url.ParseRequestURI(r.RequestURI); err == nil && u.Path != r.URL.Path {
		req.AlternatePath = u.Path
	}
	return req
}

// writeEnvelopeResponse copies a shaped response to the client. Wrapped
// bodies and unwrapped error envelopes are JSON, so they get a JSON
// Content-Type when none was set.
func writeEnvelopeResponse(w http.ResponseWriter, res envelope.Result) {
	resp := res.Response

	h := w.Header()
	maps.Copy(h, resp.Header)
	if h.Get("Content-Type") == "" && isJSONBody(res) {
		h.Set("Content-Type", envelope.JSONMediaType)
	}

	w.WriteHeader(resp.Status)
	for _, chunk := range resp.Body {
		if _, err := io.WriteString(w, chunk); err != nil {
			return
		}
	}
}

// isJSONBody reports whether the shaped body is JSON. A plain error carries
// either the literal "Error" or the error envelope.
func isJSONBody(res envelope.Result) bool {
	switch res.Outcome {
	case envelope.OutcomeWrapped, envelope.OutcomeWrappedError:
		return true
	case envelope.OutcomePlainError:
		return len(res.Response.Body) == 1 && json.Valid([]byte(res.Response.Body[0]))
	default:
		return false
	}
}

// handlerApplication runs an http.Handler against a capture writer.
type handlerApplication struct {
	next http.Handler
	r    *http.Request
}

// Invoke implements [envelope.Application]. A reported failure is returned
// together with the output captured so far.
func (a handlerApplication) Invoke(ctx context.Context, _ envelope.Request) (*envelope.Response, error) {
	slot := &failureSlot{}
	cw := newCaptureWriter()

	a.next.ServeHTTP(cw, a.r.WithContext(context.WithValue(ctx, failureKey{}, slot)))

	return cw.response(), slot.get()
}

// captureWriter buffers a handler's response. Every non-empty Write becomes
// one body chunk.
type captureWriter struct {
	header      http.Header
	chunks      []string
	statusCode  int
	wroteHeader bool
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}
}

func (cw *captureWriter) Header() http.Header {
	return cw.header
}

func (cw *captureWriter) WriteHeader(code int) {
	if cw.wroteHeader {
		return
	}
	cw.statusCode = code
	cw.wroteHeader = true
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.wroteHeader = true
	if len(b) > 0 {
		cw.chunks = append(cw.chunks, string(b))
	}
	return len(b), nil
}

func (cw *captureWriter) response() *envelope.Response {
	return &envelope.Response{
		Status: cw.statusCode,
		Header: cw.header,
		Body:   cw.chunks,
	}
}
