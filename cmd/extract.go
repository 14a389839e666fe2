package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imishinist/perfdiff/internal/extract"
	"github.com/imishinist/perfdiff/internal/parser"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the metrics extracted from a report",
	Long:  "Detect the report format and print the flat metric map that comparisons use",
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("file", "", "Report file (required)")
	extractCmd.MarkFlagRequired("file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")

	doc, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	result, err := extract.Extract(doc)
	if err != nil && !errors.Is(err, extract.ErrNoMetrics) {
		return err
	}
	if werr := writeJSON(cmd.OutOrStdout(), result); werr != nil {
		return werr
	}
	return err
}
