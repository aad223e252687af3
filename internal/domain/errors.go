package domain

import "errors"

// Sentinel errors for errors.Is() checking.
var (
	// ErrUnavailable means the upstream could not be reached at all: the
	// circuit breaker is open or the connection was refused.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrTimeout means the upstream did not answer before the deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrUpstream covers any other failure to obtain a usable upstream
	// response, such as a truncated or oversized body.
	ErrUpstream = errors.New("upstream error")
)
