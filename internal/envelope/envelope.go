// Package envelope shapes HTTP responses into a uniform JSON envelope.
//
// A response is wrapped when either the client asked for JSON (Accept) or the
// application answered with JSON (Content-Type):
//
//	{"success":true,"responded_at":"...","version":2,"location":"/api/v2/users","body":{...}}
//
// Failures raised by the wrapped application are converted into an error
// envelope whose detail is controlled by [Options.ExposeErrors]:
//
//	{"error":{"message":"Error"}}
//
// The package is transport-agnostic beyond its use of [http.Header]; the HTTP
// adapter in internal/adapters/http/middleware feeds it captured handler
// output.
package envelope

import (
	"encoding/json"
	"net/http"
	"time"
)

// JSONMediaType is the only media type that triggers wrapping. It is compared
// by exact string equality against Accept and Content-Type.
const JSONMediaType = "application/json"

// genericErrorMessage is reported to clients whenever error exposure is off,
// and is the plain-text body of unwrapped error responses.
const genericErrorMessage = "Error"

// Request is the request-scoped view the envelope needs.
type Request struct {
	// Path is the path the application routed on.
	Path string
	// Accept is the client's preferred media type, verbatim.
	Accept string
	// AlternatePath overrides Path when non-empty.
	AlternatePath string
}

// EffectivePath returns AlternatePath when set, otherwise Path. Both the
// reported location and the API version are derived from it.
func (r Request) EffectivePath() string {
	if r.AlternatePath != "" {
		return r.AlternatePath
	}
	return r.Path
}

// Response is a status/header/body triple produced by the application or
// synthesized on failure. Body holds the chunks in the order they were
// written.
type Response struct {
	Status int
	Header http.Header
	Body   []string
}

// Envelope is the wire shape of a wrapped response.
type Envelope struct {
	Success     bool            `json:"success"`
	RespondedAt time.Time       `json:"responded_at"`
	Version     int             `json:"version"`
	Location    string          `json:"location"`
	Body        json.RawMessage `json:"body"`
}

// ErrorEnvelope is the wire shape of a failure body.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the failure message and, with error exposure enabled,
// the raw chunks of the original response as a []string.
type ErrorDetail struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Outcome names the terminal state a request ended in.
type Outcome string

// Terminal states of Invoked -> {Succeeded, Failed} -> ...
const (
	OutcomePassedThrough Outcome = "passed_through"
	OutcomeWrapped       Outcome = "wrapped"
	OutcomePlainError    Outcome = "plain_error"
	OutcomeWrappedError  Outcome = "wrapped_error"
)

// Failed reports whether the outcome came from the failure path.
func (o Outcome) Failed() bool {
	return o == OutcomePlainError || o == OutcomeWrappedError
}

// Wrapped reports whether the response body is an envelope.
func (o Outcome) Wrapped() bool {
	return o == OutcomeWrapped || o == OutcomeWrappedError
}
