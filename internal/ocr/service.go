// Package ocr is the boundary to the external text-recognition collaborator.
//
// The conversion core treats OCR as a narrow interface: scanned claim-form
// bytes go in, free text comes out. Two backends are provided, Google Cloud
// Vision document text detection and a Document AI OCR processor; which one
// runs is a deployment choice (OCR_BACKEND), never a concern of the
// extraction heuristics.
//
// Required Environment Variables:
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//
// Both backends accept PDFs up to 20MB; the Vision backend additionally
// limits synchronous processing to 5 pages (a scanned CMS-1500 is one).
package ocr

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Service recognizes text in a scanned claim document.
type Service interface {
	// RecognizeText extracts the free text of a scanned document.
	RecognizeText(ctx context.Context, document io.Reader) (string, error)

	// RecognizeDocument extracts text together with recognition metadata.
	RecognizeDocument(ctx context.Context, document io.Reader) (*Result, error)
}

// NewService creates the recognition backend named by backend ("vision" or
// "documentai"); an empty name selects Vision.
func NewService(ctx context.Context, backend string) (Service, error) {
	switch backend {
	case "", visionBackendName:
		return NewVisionService(ctx)
	case documentAIBackendName:
		return NewDocumentAIService(ctx)
	default:
		return nil, fmt.Errorf("unknown OCR backend: %q (known: %s, %s)", backend, visionBackendName, documentAIBackendName)
	}
}

// Result carries recognized text with backend metadata. The conversion core
// applies its own gates on the text regardless of the reported confidence;
// the metadata is for logging and operator feedback.
type Result struct {
	// Text is the recognized text of all pages in reading order.
	Text string `json:"text"`

	// PageCount is the number of pages processed.
	PageCount int `json:"page_count"`

	// Confidence is the backend's average confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// Backend names the service that produced the result.
	Backend string `json:"backend"`

	// ProcessedAt is when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long recognition took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}
