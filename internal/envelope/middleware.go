package envelope

import (
	"context"
	"runtime/debug"
)

// Application is the wrapped downstream. Invoke is called exactly once per
// request. A response returned together with an error is treated as the
// partial output that existed when the failure happened.
type Application interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// ApplicationFunc adapts a function to Application.
type ApplicationFunc func(ctx context.Context, req Request) (*Response, error)

// Invoke calls f.
func (f ApplicationFunc) Invoke(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Result is what Call hands back to the transport.
type Result struct {
	Response *Response
	Outcome  Outcome
	// Err is the absorbed failure on the error path, nil otherwise.
	Err error
}

// Middleware invokes an Application and shapes whatever comes back. It keeps
// no per-request state and is safe for concurrent use.
type Middleware struct {
	builder *Builder
}

// New creates a Middleware around the given Builder.
func New(builder *Builder) *Middleware {
	return &Middleware{builder: builder}
}

// Builder returns the builder used to shape responses.
func (m *Middleware) Builder() *Builder {
	return m.builder
}

// Call invokes app and returns the shaped response. Application errors and
// panics never escape: they become a 500 error response, which is wrapped in
// turn (200 with success=false) when the client asked for JSON.
//
// A response selected for wrapping whose body is not JSON takes the failure
// path too, with the unwrapped response as the original.
func (m *Middleware) Call(ctx context.Context, req Request, app Application) Result {
	resp, err := invoke(ctx, app, req)
	if err == nil {
		shape, shapeErr := m.builder.Shape(req, resp)
		if shapeErr == nil {
			shape.Apply(resp)
			outcome := OutcomePassedThrough
			if shape.Wrap {
				outcome = OutcomeWrapped
			}
			return Result{Response: resp, Outcome: outcome}
		}
		err = shapeErr
	}

	errResp := m.builder.BuildError(err, req, resp)

	// The synthesized response has no Content-Type, so only the client's
	// Accept can select wrapping here.
	shape, shapeErr := m.builder.Shape(req, errResp)
	if shapeErr != nil || !shape.Wrap {
		return Result{Response: errResp, Outcome: OutcomePlainError, Err: err}
	}
	shape.Apply(errResp)
	return Result{Response: errResp, Outcome: OutcomeWrappedError, Err: err}
}

func invoke(ctx context.Context, app Application, req Request) (resp *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			resp = nil
			err = NewPanicError(v, debug.Stack())
		}
	}()

	resp, err = app.Invoke(ctx, req)
	if resp == nil && err == nil {
		err = ErrNoResponse
	}
	return resp, err
}
