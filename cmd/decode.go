package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"claimbridge/internal/hl7"
	"claimbridge/internal/logger"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [message-file]",
	Short: "Decode an HL7 wire message into a canonical JSON record",
	Long: `Parse a pipe-delimited HL7-style message and emit the canonical record
as JSON: an object keyed by segment key, each value an object of field
name/value pairs.

Field positions are resolved through the configured schema variant; positions
the schema does not map decode under generic field<N> names, and repeating
segments are keyed by their set identifier. Decoded values stay in wire form
(dates are not reformatted on decode).`,
	Example: `  # Decode a message to stdout
  claimbridge decode encounter.hl7

  # Decode with the legacy field mapping, into a file
  claimbridge decode encounter.hl7 --variant form1500a -o encounter.json`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	decodeCmd.Flags().String("variant", "", "Schema variant (form1500, form1500a)")
}

func runDecode(cmd *cobra.Command, args []string) error {
	log := logger.WithRequestID(uuid.NewString()).With().Str("component", "decode").Logger()

	outputPath, _ := cmd.Flags().GetString("output")
	variant, _ := cmd.Flags().GetString("variant")
	messagePath := args[0]

	log.Info().
		Str("file", messagePath).
		Str("variant", variant).
		Msg("Starting wire message decode")

	if _, err := validateInputFile(messagePath, log); err != nil {
		return err
	}

	schema, err := resolveSchema(variant, log)
	if err != nil {
		return err
	}

	wireText, err := os.ReadFile(messagePath)
	if err != nil {
		return fmt.Errorf("failed to read message file: %w", err)
	}

	record, err := hl7.Decode(string(wireText), schema)
	if err != nil {
		log.Error().Err(err).Msg("Decode failed")
		if errors.Is(err, hl7.ErrEmptyMessage) {
			return fmt.Errorf("the input contains no segment lines; is %s really a wire message?", messagePath)
		}
		return fmt.Errorf("decode failed: %w", err)
	}

	log.Info().
		Int("segments", len(record)).
		Msg("Decode completed")

	output, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	return writeOutput(output, outputPath, log)
}
