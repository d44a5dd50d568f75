// Package fault defines the error taxonomy shared by the core pipeline.
// Every anomaly is surfaced to the caller; nothing is corrected silently.
package fault

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad caller input before any external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// ParseError means the model responded but the safety-relevant field could
// not be located in its output. The raw text is kept for diagnostics.
type ParseError struct {
	Field string
	Raw   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %q from model response", e.Field)
}

// UpstreamError names the external dependency that failed after retries
// were exhausted.
type UpstreamError struct {
	Dependency string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Dependency, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NoContextError is returned when vector search finds nothing to ground an
// answer on.
type NoContextError struct {
	Collection string
}

func (e *NoContextError) Error() string {
	return fmt.Sprintf("no context retrieved from collection %q", e.Collection)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func IsNoContext(err error) bool {
	var ne *NoContextError
	return errors.As(err, &ne)
}
