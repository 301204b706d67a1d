package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Common extraction errors
var (
	// ErrTextTooShort is returned when the cleaned OCR text is shorter than
	// the minimum length worth matching against.
	ErrTextTooShort = errors.New("OCR text too short to be a claim form")

	// ErrNotClaimForm is returned when the cleaned OCR text carries none of
	// the claim-form identifying keywords. OCR can succeed technically while
	// recovering garbage, so this gate runs regardless of what the OCR
	// collaborator reported.
	ErrNotClaimForm = errors.New("text does not look like a CMS-1500 claim form")

	// ErrQuorumNotMet is returned when too few required fields matched for
	// the extraction to be trusted.
	ErrQuorumNotMet = errors.New("required field quorum not met")
)

// QuorumError reports an extraction that matched fewer required fields than
// the quorum threshold. It carries the unmatched required field names so the
// caller can tell the user exactly what could not be recovered.
type QuorumError struct {
	// Matched is the number of required fields that matched.
	Matched int

	// Quorum is the minimum number of required matches for success.
	Quorum int

	// Missing lists the required field names that did not match.
	Missing []string
}

// Error implements the error interface.
func (e *QuorumError) Error() string {
	return fmt.Sprintf("extract: %d of %d required fields matched (quorum %d); missing: %s",
		e.Matched, e.Matched+len(e.Missing), e.Quorum, strings.Join(e.Missing, ", "))
}

// Is implements error matching for Go 1.13+ error handling.
func (e *QuorumError) Is(target error) bool {
	return target == ErrQuorumNotMet
}

// ExtractionError wraps errors with additional context about an extraction
// failure.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "Extract").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("extract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("extract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExtractionError creates a new ExtractionError with the specified
// operation and underlying error.
func NewExtractionError(op string, err error, details string) *ExtractionError {
	return &ExtractionError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
