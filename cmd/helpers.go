package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"claimbridge/internal/hl7"
)

// validateInputFile checks that the path names a readable, non-empty regular
// file.
func validateInputFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Input file not found")
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing input file")
			return nil, fmt.Errorf("permission denied accessing input file: %s", path)
		}
		return nil, fmt.Errorf("error accessing input file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", path).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", path).
			Msg("Input file is empty")
		return nil, fmt.Errorf("input file is empty: %s", path)
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// resolveSchema picks the schema variant from the --variant flag, falling
// back to the SCHEMA_VARIANT environment setting.
func resolveSchema(variant string, log zerolog.Logger) (*hl7.Schema, error) {
	if variant == "" {
		variant = os.Getenv("SCHEMA_VARIANT")
	}
	schema, err := hl7.VariantSchema(variant)
	if err != nil {
		log.Error().
			Err(err).
			Str("variant", variant).
			Msg("Unknown schema variant")
		return nil, err
	}
	return schema, nil
}

// writeOutput writes data to the output path, or stdout when the path is
// empty.
func writeOutput(data []byte, outputPath string, log zerolog.Logger) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Results written to file")
		return nil
	}

	if _, err := os.Stdout.Write(data); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}
