package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claimbridge/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "claimbridge",
	Short: "Convert CMS-1500 encounters between HL7 wire messages, JSON records and scanned forms",
	Long: `claimbridge reconciles three representations of one clinical/billing
encounter: a canonical JSON record, a pipe-delimited HL7-style wire message,
and the text recovered by OCR from a scanned CMS-1500 claim form.

decode and encode are pure, table-driven conversions between the wire format
and the canonical record. extract runs a scanned form through the configured
OCR backend and reconstructs a canonical record heuristically.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Welcome to claimbridge!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
