package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the maximum scan size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous Vision processing
	MaxPagesSync = 5

	visionBackendName = "vision"
)

// VisionService implements Service using Google Cloud Vision document text
// detection.
type VisionService struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionService creates a Vision-backed recognition service with
// credentials from the environment. It expects either a
// GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON.
func NewVisionService(ctx context.Context) (Service, error) {
	const op = "NewVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapRecognitionError(op, visionBackendName, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapRecognitionError(op, visionBackendName, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try application default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapRecognitionError(op, visionBackendName, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionService{client: client}, nil
}

// NewVisionServiceWithClient creates a Vision-backed service with an
// explicit client (for testing).
func NewVisionServiceWithClient(client *vision.ImageAnnotatorClient) Service {
	return &VisionService{client: client}
}

// RecognizeText extracts the free text of a scanned document.
func (s *VisionService) RecognizeText(ctx context.Context, document io.Reader) (string, error) {
	result, err := s.RecognizeDocument(ctx, document)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// RecognizeDocument extracts text together with recognition metadata.
func (s *VisionService) RecognizeDocument(ctx context.Context, document io.Reader) (*Result, error) {
	const op = "RecognizeDocument"
	startTime := time.Now()

	pdfBytes, err := readDocument(op, visionBackendName, document)
	if err != nil {
		return nil, err
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := s.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapRecognitionError(op, visionBackendName, ErrRecognitionFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapRecognitionError(op, visionBackendName, ErrRecognitionFailed, "no response from Vision API")
	}
	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapRecognitionError(op, visionBackendName, ErrRecognitionFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	result, err := collectVisionText(fileResp)
	if err != nil {
		return nil, WrapRecognitionError(op, visionBackendName, err, "failed to process Vision API response")
	}

	result.Backend = visionBackendName
	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// collectVisionText aggregates per-page annotations into one Result.
func collectVisionText(fileResp *visionpb.AnnotateFileResponse) (*Result, error) {
	if len(fileResp.Responses) == 0 {
		return nil, ErrNoText
	}

	pageCount := len(fileResp.Responses)
	if pageCount > MaxPagesSync {
		return nil, ErrTooManyPages
	}

	var allText strings.Builder
	var confidenceSum float32
	var confidenceCount int

	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, fmt.Errorf("error processing page %d: %s", pageIdx+1, page.Error.Message)
		}
		if page.FullTextAnnotation == nil {
			continue
		}
		if pageIdx > 0 {
			allText.WriteString("\n\n")
		}
		allText.WriteString(page.FullTextAnnotation.Text)

		for _, annotation := range page.TextAnnotations {
			if annotation.Confidence > 0 {
				confidenceSum += annotation.Confidence
				confidenceCount++
			}
		}
	}

	text := allText.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoText
	}

	var avgConfidence float32
	if confidenceCount > 0 {
		avgConfidence = confidenceSum / float32(confidenceCount)
	}

	return &Result{
		Text:       text,
		PageCount:  pageCount,
		Confidence: avgConfidence,
	}, nil
}

// readDocument slurps and validates the scan bytes shared by both backends.
func readDocument(op, backend string, document io.Reader) ([]byte, error) {
	data, err := io.ReadAll(document)
	if err != nil {
		return nil, WrapRecognitionError(op, backend, err, "failed to read document data")
	}
	if len(data) > MaxFileSizeBytes {
		return nil, WrapRecognitionError(op, backend, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return nil, WrapRecognitionError(op, backend, ErrInvalidDocument, "missing PDF header")
	}
	return data, nil
}

// Close closes the underlying Vision client.
func (s *VisionService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
