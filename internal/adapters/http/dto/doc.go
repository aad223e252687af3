// Package dto provides the wire shapes the inbound HTTP adapter writes
// outside the envelope: RFC 9457 Problem Details errors and probe bodies.
package dto
