package envelope

import (
	"errors"
	"fmt"
)

// ErrBodyNotJSON is returned when a response selected for wrapping carries a
// chunk that does not parse as JSON.
var ErrBodyNotJSON = errors.New("response body is not valid JSON")

// ErrNoResponse is reported when an application returns neither a response
// nor an error.
var ErrNoResponse = errors.New("application returned no response")

// PanicError is the failure recorded when the application panics.
type PanicError struct {
	Value any
	Stack []byte
}

// NewPanicError wraps a recovered panic value.
func NewPanicError(v any, stack []byte) *PanicError {
	return &PanicError{Value: v, Stack: stack}
}

// Error returns the panic value as text. When the value is itself an error
// its message is used unchanged.
func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

// Unwrap exposes a panic value that is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
