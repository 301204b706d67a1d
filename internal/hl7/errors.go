package hl7

import (
	"errors"
	"fmt"
)

// Common codec errors
var (
	// ErrEmptyMessage is returned when the wire text contains no segment
	// lines at all.
	ErrEmptyMessage = errors.New("message contains no segments")

	// ErrMalformedSegment is returned when a line cannot be read as a
	// segment (e.g., a blank segment type token).
	ErrMalformedSegment = errors.New("malformed segment line")
)

// CodecError wraps errors with additional context about a codec failure.
type CodecError struct {
	// Op is the operation that failed (e.g., "Decode").
	Op string

	// Err is the underlying error.
	Err error

	// Line is the offending segment line number (1-based), if known.
	Line int

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("hl7: %s failed at line %d: %s: %v", e.Op, e.Line, e.Details, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("hl7: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("hl7: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *CodecError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *CodecError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewCodecError creates a new CodecError with the specified operation and
// underlying error.
func NewCodecError(op string, err error, line int, details string) *CodecError {
	return &CodecError{
		Op:      op,
		Err:     err,
		Line:    line,
		Details: details,
	}
}
