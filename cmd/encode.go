package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"claimbridge/internal/hl7"
	"claimbridge/internal/logger"
	"claimbridge/pkg/models"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [record-file]",
	Short: "Encode a canonical JSON record into an HL7 wire message",
	Long: `Read a canonical record (JSON object keyed by segment key) and emit the
pipe-delimited wire message.

Segments are emitted in the schema's declared type order. Instances of a
repeating segment type are ordered by the string value of their set
identifier. Date fields are normalized to the compact YYYYMMDD wire token;
trailing empty fields are trimmed from each line.`,
	Example: `  # Encode a record to stdout
  claimbridge encode encounter.json

  # Encode into a file with the legacy field mapping
  claimbridge encode encounter.json --variant form1500a -o encounter.hl7`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	encodeCmd.Flags().String("variant", "", "Schema variant (form1500, form1500a)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	log := logger.WithRequestID(uuid.NewString()).With().Str("component", "encode").Logger()

	outputPath, _ := cmd.Flags().GetString("output")
	variant, _ := cmd.Flags().GetString("variant")
	recordPath := args[0]

	log.Info().
		Str("file", recordPath).
		Str("variant", variant).
		Msg("Starting record encode")

	if _, err := validateInputFile(recordPath, log); err != nil {
		return err
	}

	schema, err := resolveSchema(variant, log)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(recordPath)
	if err != nil {
		return fmt.Errorf("failed to read record file: %w", err)
	}

	record, err := models.ParseRecord(data)
	if err != nil {
		log.Error().Err(err).Msg("Record file is not a canonical record")
		return fmt.Errorf("%s is not a canonical JSON record: %w", recordPath, err)
	}

	wireText := hl7.Encode(record, schema)
	if wireText == "" {
		log.Warn().Msg("Record contains no schema-known segments; output is empty")
	}

	log.Info().
		Int("segments", len(record)).
		Int("bytes", len(wireText)).
		Msg("Encode completed")

	return writeOutput([]byte(wireText), outputPath, log)
}
