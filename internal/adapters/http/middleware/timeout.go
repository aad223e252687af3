package middleware

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/adapters/http/dto"
	"github.com/jsamuelsen11/go-envelope-gateway/internal/domain"
)

// Timeout returns middleware that enforces a request deadline. The context
// passed to the handler carries the deadline so that upstream I/O can respect
// it. When the deadline passes first, the timeout is reported to an enclosing
// Envelope middleware as a failure wrapping [domain.ErrTimeout]; without one,
// a 504 problem-details response is written.
//
// The handler runs in a separate goroutine and writes into a buffer that is
// only copied out if it finishes in time. A panic in the handler is re-raised
// on the serving goroutine so outer recovery sees it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})
			panicked := make(chan any, 1)

			go func() {
				defer func() {
					if v := recover(); v != nil {
						panicked <- v
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case v := <-panicked:
				panic(v)
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.flush()
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true

				err := fmt.Errorf("%s %s: no response within %s: %w", r.Method, r.URL.Path, timeout, domain.ErrTimeout)
				if !ReportFailure(r, err) {
					dto.WriteErrorResponse(w, r, err)
				}
			}
		})
	}
}

// timeoutWriter buffers the response so that the timeout path can take over
// if the handler hasn't finished. Writes are kept as separate chunks so the
// downstream writer sees the same sequence of Write calls. All access is
// guarded by a mutex shared between the handler goroutine and the timeout
// select.
type timeoutWriter struct {
	w           http.ResponseWriter
	mu          sync.Mutex
	header      http.Header
	chunks      [][]byte
	statusCode  int
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.header == nil {
		tw.header = make(http.Header)
	}
	return tw.header
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.statusCode = http.StatusOK
		tw.wroteHeader = true
	}
	tw.chunks = append(tw.chunks, append([]byte(nil), b...))
	return len(b), nil
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.wroteHeader {
		return
	}
	tw.statusCode = code
	tw.wroteHeader = true
}

// flush copies the buffered response to the underlying writer. Must be
// called with tw.mu held.
func (tw *timeoutWriter) flush() {
	if tw.header != nil {
		maps.Copy(tw.w.Header(), tw.header)
	}
	if tw.wroteHeader {
		tw.w.WriteHeader(tw.statusCode)
	}
	for _, chunk := range tw.chunks {
		if _, err := tw.w.Write(chunk); err != nil {
			return
		}
	}
}
