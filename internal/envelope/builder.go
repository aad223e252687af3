package envelope

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Options is the immutable configuration of a Builder.
type Options struct {
	// ExposeErrors reports failure messages and the original response body
	// in error envelopes instead of the generic "Error".
	ExposeErrors bool
}

// Builder assembles envelopes. It holds no mutable state and is safe for
// concurrent use.
type Builder struct {
	opts Options
	now  func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the clock used for responded_at.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a Builder with the given options.
func NewBuilder(opts Options, bopts ...BuilderOption) *Builder {
	b := &Builder{opts: opts, now: time.Now}
	for _, o := range bopts {
		o(b)
	}
	return b
}

// Options returns the builder's configuration.
func (b *Builder) Options() Options {
	return b.opts
}

// Shape is the decision taken for one response. Transport status and body
// are kept apart so each can be checked on its own.
type Shape struct {
	// Wrap is false when the response passes through untouched.
	Wrap bool
	// Envelope is the assembled envelope when Wrap is true.
	Envelope *Envelope
	// Payload is the serialized Envelope.
	Payload []byte
	// StatusOverride replaces the response status when non-zero.
	StatusOverride int
}

// Apply writes the decision onto resp. A pass-through shape leaves resp
// untouched.
func (s Shape) Apply(resp *Response) {
	if !s.Wrap || resp == nil {
		return
	}
	resp.Body = []string{string(s.Payload)}
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set("Content-Length", strconv.Itoa(len(s.Payload)))
	if s.StatusOverride != 0 {
		resp.Status = s.StatusOverride
	}
}

// Shape decides how resp is presented for req without modifying it. It
// fails with ErrBodyNotJSON when wrapping applies and a chunk is not JSON,
// and with ErrNoResponse when resp is nil.
func (b *Builder) Shape(req Request, resp *Response) (Shape, error) {
	if resp == nil {
		return Shape{}, ErrNoResponse
	}
	if !ShouldWrap(req, resp) {
		return Shape{}, nil
	}

	body, err := normalizeBody(resp.Body)
	if err != nil {
		return Shape{}, err
	}

	path := req.EffectivePath()
	env := &Envelope{
		Success:     isSuccessfulStatus(resp.Status),
		RespondedAt: b.now().UTC(),
		Version:     ExtractVersion(path),
		Location:    path,
		Body:        body,
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return Shape{}, fmt.Errorf("encoding envelope: %w", err)
	}

	shape := Shape{Wrap: true, Envelope: env, Payload: payload}
	// The envelope carries the real outcome; the transport reports 200.
	if !env.Success {
		shape.StatusOverride = http.StatusOK
	}
	return shape, nil
}

// BuildSuccess wraps resp in place when negotiation calls for it and returns
// it. On error resp is returned unmodified.
func (b *Builder) BuildSuccess(req Request, resp *Response) (*Response, error) {
	shape, err := b.Shape(req, resp)
	if err != nil {
		return resp, err
	}
	shape.Apply(resp)
	return resp, nil
}

// BuildError converts a failure into a 500 response. The body is the plain
// text "Error" unless negotiation against original (which may be nil) calls
// for JSON, in which case it is an ErrorEnvelope. The status is 500 either
// way.
func (b *Builder) BuildError(err error, req Request, original *Response) *Response {
	body := genericErrorMessage
	if ShouldWrap(req, original) {
		body = b.errorPayload(err, original)
	}
	return &Response{
		Status: http.StatusInternalServerError,
		Header: make(http.Header),
		Body:   []string{body},
	}
}

func (b *Builder) errorPayload(err error, original *Response) string {
	detail := ErrorDetail{Message: genericErrorMessage}
	if b.opts.ExposeErrors {
		if err != nil {
			detail.Message = err.Error()
		}
		if original != nil {
			detail.Data = append([]string{}, original.Body...)
		}
	}

	payload, mErr := json.Marshal(ErrorEnvelope{Error: detail})
	if mErr != nil {
		return genericErrorMessage
	}
	return string(payload)
}

// normalizeBody parses every chunk as JSON: no chunks is null, one chunk is
// that value, several become an array in order.
func normalizeBody(chunks []string) (json.RawMessage, error) {
	switch len(chunks) {
	case 0:
		return nil, nil
	case 1:
		return parseChunk(0, chunks[0])
	}

	values := make([]json.RawMessage, len(chunks))
	for i, chunk := range chunks {
		v, err := parseChunk(i, chunk)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	out, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encoding body chunks: %w", err)
	}
	return out, nil
}

func parseChunk(i int, chunk string) (json.RawMessage, error) {
	var v json.RawMessage
	if err := json.Unmarshal([]byte(chunk), &v); err != nil {
		return nil, fmt.Errorf("%w: chunk %d: %w", ErrBodyNotJSON, i, err)
	}
	return v, nil
}

func isSuccessfulStatus(code int) bool {
	return code < http.StatusBadRequest
}
