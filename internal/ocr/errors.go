package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrDocumentTooLarge is returned when the scan exceeds the 20MB limit
	// for synchronous processing.
	ErrDocumentTooLarge = errors.New("document exceeds the maximum size limit (20MB)")

	// ErrInvalidDocument is returned when the provided data is not a valid
	// PDF document.
	ErrInvalidDocument = errors.New("invalid or corrupted PDF document")

	// ErrRecognitionFailed is returned when the recognition backend fails
	// to process the document. It is propagated without retry; retrying a
	// deterministic conversion would not change the outcome.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrMissingCredentials is returned when neither
	// GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")

	// ErrTooManyPages is returned when the scan has too many pages for
	// synchronous Vision processing.
	ErrTooManyPages = errors.New("document has too many pages (maximum 5 for synchronous processing)")

	// ErrNoText is returned when the backend found no readable text at all.
	ErrNoText = errors.New("document contains no readable text")
)

// RecognitionError wraps errors with additional context about the OCR
// boundary failure.
type RecognitionError struct {
	// Op is the operation that failed (e.g., "RecognizeDocument").
	Op string

	// Backend names the recognition backend involved.
	Backend string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *RecognitionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s (%s) failed: %s: %v", e.Op, e.Backend, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s (%s) failed: %v", e.Op, e.Backend, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RecognitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapRecognitionError wraps an error as a RecognitionError if it isn't
// already one.
func WrapRecognitionError(op, backend string, err error, details string) error {
	if err == nil {
		return nil
	}

	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		return err // Already wrapped
	}

	return &RecognitionError{
		Op:      op,
		Backend: backend,
		Err:     err,
		Details: details,
	}
}
