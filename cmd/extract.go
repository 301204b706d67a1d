package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"claimbridge/internal/extract"
	"claimbridge/internal/hl7"
	"claimbridge/internal/logger"
	"claimbridge/internal/ocr"
)

var extractCmd = &cobra.Command{
	Use:   "extract [scan-file]",
	Short: "Reconstruct a canonical record from a scanned CMS-1500 claim form",
	Long: `Run a scanned claim form (PDF) through the configured OCR backend, then
heuristically match the recovered text against the CMS-1500 field patterns
to rebuild a canonical record.

Extraction is gated: the text must be long enough and contain claim-form
keywords, and a quorum of required fields must match, otherwise the document
is rejected with the list of fields that could not be recovered. Optional
fields that do not match are filled with recognizable defaults so the result
always encodes cleanly.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Extract a scanned form to a canonical JSON record
  claimbridge extract scan.pdf

  # Extract straight to an HL7 wire message
  claimbridge extract scan.pdf --hl7 -o encounter.hl7

  # Use Document AI instead of Cloud Vision, include OCR metadata
  claimbridge extract scan.pdf --backend documentai --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// extractOutput is the JSON shape emitted with --json.
type extractOutput struct {
	Record      json.RawMessage `json:"record"`
	FileName    string          `json:"file_name"`
	FileSize    int64           `json:"file_size"`
	Backend     string          `json:"backend"`
	PageCount   int             `json:"page_count"`
	Confidence  float32         `json:"confidence"`
	OCRTime     string          `json:"ocr_duration"`
	ExtractedAt time.Time       `json:"extracted_at"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("hl7", false, "Encode the extracted record as an HL7 wire message")
	extractCmd.Flags().Bool("json", false, "Wrap the record with OCR metadata in the output")
	extractCmd.Flags().String("backend", "", "OCR backend (vision, documentai; default from OCR_BACKEND)")
	extractCmd.Flags().String("variant", "", "Schema variant used with --hl7 (form1500, form1500a)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithRequestID(uuid.NewString()).With().Str("component", "extract").Logger()

	outputPath, _ := cmd.Flags().GetString("output")
	asHL7, _ := cmd.Flags().GetBool("hl7")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	backend, _ := cmd.Flags().GetString("backend")
	variant, _ := cmd.Flags().GetString("variant")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	scanPath := args[0]

	if backend == "" {
		backend = os.Getenv("OCR_BACKEND")
	}

	log.Info().
		Str("file", scanPath).
		Str("backend", backend).
		Bool("hl7", asHL7).
		Int("timeout", timeoutSecs).
		Msg("Starting claim form extraction")

	fileInfo, err := validateInputFile(scanPath, log)
	if err != nil {
		return err
	}
	if fileInfo.Size() > ocr.MaxFileSizeBytes {
		log.Error().
			Int64("size", fileInfo.Size()).
			Int64("max_size", ocr.MaxFileSizeBytes).
			Msg("Scan exceeds maximum size limit")
		return fmt.Errorf("scan too large (%d bytes); maximum size is %d bytes (20MB)", fileInfo.Size(), ocr.MaxFileSizeBytes)
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	ocrService, err := createOCRService(ctx, backend, log)
	if err != nil {
		return err
	}

	scanFile, err := os.Open(scanPath)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", scanPath).
			Msg("Failed to open scan file")
		return fmt.Errorf("failed to open scan file: %w", err)
	}
	defer func() {
		if closeErr := scanFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close scan file")
		}
	}()

	result, err := ocrService.RecognizeDocument(ctx, scanFile)
	if err != nil {
		return handleOCRError(err, log)
	}

	log.Info().
		Int("page_count", result.PageCount).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR completed")

	record, err := extract.NewForm1500().Extract(result.Text)
	if err != nil {
		return handleExtractionError(err, log)
	}

	var output []byte
	switch {
	case asHL7:
		schema, err := resolveSchema(variant, log)
		if err != nil {
			return err
		}
		output = []byte(hl7.Encode(record, schema))
	case jsonOutput:
		recordJSON, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		output, err = json.MarshalIndent(extractOutput{
			Record:      recordJSON,
			FileName:    fileInfo.Name(),
			FileSize:    fileInfo.Size(),
			Backend:     result.Backend,
			PageCount:   result.PageCount,
			Confidence:  result.Confidence,
			OCRTime:     result.ProcessingDuration.String(),
			ExtractedAt: time.Now(),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	default:
		output, err = json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
	}

	return writeOutput(output, outputPath, log)
}

// createOCRService creates and configures the recognition backend.
func createOCRService(ctx context.Context, backend string, log zerolog.Logger) (ocr.Service, error) {
	hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""
	if !hasCredentials {
		log.Error().Msg("Google Cloud credentials not configured")
		return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
			"1. GOOGLE_APPLICATION_CREDENTIALS with a path to a service account JSON file\n" +
			"2. GOOGLE_CREDENTIALS with inline JSON credentials\n" +
			"3. Application Default Credentials (gcloud auth application-default login)")
	}

	service, err := ocr.NewService(ctx, backend)
	if err != nil {
		log.Error().
			Err(err).
			Str("backend", backend).
			Msg("Failed to create OCR service")
		return nil, fmt.Errorf("failed to create OCR service: %w", err)
	}

	log.Debug().Str("backend", backend).Msg("OCR service created")
	return service, nil
}

// handleOCRError provides user-friendly messages for recognition failures.
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR timed out; try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR was canceled")
	case errors.Is(err, ocr.ErrDocumentTooLarge):
		return fmt.Errorf("scan is too large (maximum 20MB); try compressing the file")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("scan has too many pages (maximum 5); a CMS-1500 should be a single page")
	case errors.Is(err, ocr.ErrInvalidDocument):
		return fmt.Errorf("invalid or corrupted PDF file; please check the scan")
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("no readable text found in the scan; the image may be blank or too degraded")
	case errors.Is(err, ocr.ErrMissingCredentials):
		return fmt.Errorf("Google Cloud credentials missing or invalid: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}

// handleExtractionError provides user-friendly messages for heuristic
// extraction failures.
func handleExtractionError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Field extraction failed")

	var quorumErr *extract.QuorumError
	switch {
	case errors.As(err, &quorumErr):
		return fmt.Errorf("could not recover enough required fields (%d matched, %d needed); missing: %v\n"+
			"The scan may be too degraded, or it may not be a CMS-1500",
			quorumErr.Matched, quorumErr.Quorum, quorumErr.Missing)
	case errors.Is(err, extract.ErrTextTooShort):
		return fmt.Errorf("the OCR text is too short to be a claim form; the scan may be blank")
	case errors.Is(err, extract.ErrNotClaimForm):
		return fmt.Errorf("the document does not look like a CMS-1500 claim form")
	default:
		return fmt.Errorf("field extraction failed: %w", err)
	}
}
